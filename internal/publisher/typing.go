package publisher

import (
	"context"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const (
	typeDelayMin     = 80 * time.Millisecond
	typeDelayMax     = 300 * time.Millisecond
	punctuationPause = 350 * time.Millisecond
	thinkingPause    = 900 * time.Millisecond
	thinkingEveryMin = 12
	thinkingEveryJit = 8
	suggestionSettle = 1200 * time.Millisecond
)

// typingDelay returns a randomized per-character delay mimicking a human
// typist: slower after punctuation, with occasional longer thinking pauses.
func typingDelay(r rune, sinceThinking, nextThinking int) time.Duration {
	delay := typeDelayMin + time.Duration(rand.Int63n(int64(typeDelayMax-typeDelayMin)))
	if isPausePunctuation(r) {
		delay += punctuationPause
	}
	if sinceThinking >= nextThinking {
		delay += thinkingPause
	}
	return delay
}

func isPausePunctuation(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', '。', '，', '！', '？', '；', '：', '\n':
		return true
	}
	return unicode.IsSpace(r) && r != ' '
}

func nextThinkingInterval() int {
	return thinkingEveryMin + rand.Intn(thinkingEveryJit)
}

// segment is a slice of text typed as one unit. Hashtag segments trigger the
// autocomplete routine after typing.
type segment struct {
	text    string
	hashtag bool
}

// splitHashtagSegments splits text around `#topic` markers. The hashtag
// segment carries the marker and the topic word; surrounding text stays in
// plain segments.
func splitHashtagSegments(text string) []segment {
	var segments []segment
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			segments = append(segments, segment{text: plain.String()})
			plain.Reset()
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] == '#' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			flushPlain()
			j := i + 1
			for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != '#' {
				j++
			}
			segments = append(segments, segment{text: string(runes[i:j]), hashtag: true})
			i = j
			continue
		}
		plain.WriteRune(runes[i])
		i++
	}
	flushPlain()
	return segments
}

// typeHumanized sends text into the focused element one character at a time
// with randomized delays.
func (s *session) typeHumanized(ctx context.Context, sel, text string) error {
	text = SanitizeBMP(text)
	sinceThinking := 0
	nextThinking := nextThinkingInterval()
	for _, r := range text {
		if err := chromedp.Run(ctx, chromedp.SendKeys(sel, string(r), chromedp.ByQuery)); err != nil {
			return err
		}
		delay := typingDelay(r, sinceThinking, nextThinking)
		if sinceThinking >= nextThinking {
			sinceThinking = 0
			nextThinking = nextThinkingInterval()
		} else {
			sinceThinking++
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

// typeDescription types the description into sel, running the hashtag
// autocomplete routine after each `#topic` segment.
func (s *session) typeDescription(ctx context.Context, sel, text string) error {
	for _, seg := range splitHashtagSegments(text) {
		if err := s.typeHumanized(ctx, sel, seg.text); err != nil {
			return err
		}
		if !seg.hashtag {
			continue
		}
		if err := s.confirmHashtag(ctx, sel); err != nil {
			return err
		}
	}
	return nil
}

// confirmHashtag accepts the topic autocomplete: suggestion cascade first,
// keyboard fallbacks when no suggestion element can be clicked.
func (s *session) confirmHashtag(ctx context.Context, sel string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(suggestionSettle):
	}

	suggestions := cascade{name: "hashtag suggestion", perStrategy: 2 * time.Second, budget: 8 * time.Second}
	_, err := suggestions.run(ctx, s.logger, []strategy{
		{name: "mention list item", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.Click(".mention-list .item", chromedp.ByQuery, chromedp.NodeVisible))
		}},
		{name: "selected suggestion", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.Click(".mention-list .item.selected, .suggestion.selected", chromedp.ByQuery, chromedp.NodeVisible))
		}},
		{name: "dropdown option role", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.Click(`[role="listbox"] [role="option"], [role="menu"] [role="menuitem"]`, chromedp.ByQuery, chromedp.NodeVisible))
		}},
		{name: "enter key", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery))
		}},
		{name: "arrow down then enter", run: func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.SendKeys(sel, kb.ArrowDown, chromedp.ByQuery),
				chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery),
			)
		}},
	})
	return err
}
