// Copyright 2025 Lexemic Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunk

import (
	"regexp"
	"strings"

	"github.com/lexemic/recall/core"
)

var (
	paragraphRe = regexp.MustCompile(`\n{2,}`)
	sentenceRe  = regexp.MustCompile(`\.\s+`)
)

// Splitter splits raw text into retrievable chunks using tiered fallbacks:
// paragraphs first, then single lines, then overlapping sentence windows.
// Later tiers trade structural fidelity for guaranteed granularity, so
// terse or single-block input still yields multiple retrievable units.
type Splitter struct {
	minLength  int
	windowSize int
	stride     int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithMinLength sets the minimum chunk length in bytes.
// Shorter chunks are dropped from the output regardless of tier.
// Default is core.MinChunkLen.
func WithMinLength(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithWindow sets the sentence-grouping window size and stride.
// A stride smaller than the window makes consecutive windows overlap,
// which keeps context at window boundaries at the cost of duplication.
// Defaults are size 5, stride 3.
func WithWindow(size, stride int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.windowSize = size
		}
		if stride > 0 {
			s.stride = stride
		}
	}
}

// NewSplitter creates a Splitter with the given options applied over defaults.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		minLength:  core.MinChunkLen,
		windowSize: 5,
		stride:     3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultSplitter backs the package-level Split.
var defaultSplitter = NewSplitter()

// Split splits text with the default splitter configuration.
func Split(text string) []string {
	return defaultSplitter.Split(text)
}

// Split splits text into an ordered list of chunks. Blank input yields nil.
// Input that survives no tier above the minimum length also yields nil;
// callers must handle "nothing to ingest".
func (s *Splitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	// Tier 1: paragraph boundaries.
	chunks := splitAndTrim(paragraphRe.Split(trimmed, -1))

	// Tier 2: structured single-line sections.
	if len(chunks) == 1 {
		chunks = splitAndTrim(strings.Split(trimmed, "\n"))
	}

	// Tier 3: overlapping sentence windows over the original text.
	if len(chunks) <= 2 {
		chunks = s.sentenceWindows(text)
	}

	// Final length filter, regardless of which tier produced the chunk.
	filtered := chunks[:0]
	for _, c := range chunks {
		if len(c) >= s.minLength {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// sentenceWindows splits text into sentences and regroups them into
// windows of up to windowSize sentences, advancing by stride. A trailing
// period is restored on every window except the last one when no
// sentences remain beyond it.
func (s *Splitter) sentenceWindows(text string) []string {
	split := sentenceRe.Split(text, -1)
	sentences := make([]string, 0, len(split))
	for _, sent := range split {
		if strings.TrimSpace(sent) != "" {
			sentences = append(sentences, sent)
		}
	}

	var chunks []string
	for i := 0; i < len(sentences); i += s.stride {
		end := i + s.windowSize
		if end > len(sentences) {
			end = len(sentences)
		}
		joined := strings.Join(sentences[i:end], ". ")
		if i+s.windowSize < len(sentences) {
			joined += "."
		}
		joined = strings.TrimSpace(joined)
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}
	return chunks
}

// splitAndTrim trims every part and drops the empty ones.
func splitAndTrim(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
