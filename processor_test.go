package streamblocks_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/mock"
	"github.com/fwojciec/streamblocks/schema"
	"github.com/fwojciec/streamblocks/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func taskRegistry(t *testing.T) *streamblocks.Registry {
	t.Helper()
	reg := streamblocks.NewRegistry()
	require.NoError(t, reg.Register("task", schema.Any(), schema.Text()))
	return reg
}

func newProcessor(t *testing.T, reg *streamblocks.Registry, syn streamblocks.Syntax, opts ...func(*streamblocks.Config)) *streamblocks.Processor {
	t.Helper()
	cfg := streamblocks.DefaultConfig(syn)
	cfg.StreamID = "s1"
	cfg.Now = func() time.Time { return fixedNow }
	for _, o := range opts {
		o(&cfg)
	}
	p, err := streamblocks.NewProcessor(reg, cfg)
	require.NoError(t, err)
	return p
}

// run feeds each fragment, then finalizes, and returns every event.
func run(t *testing.T, p *streamblocks.Processor, fragments ...string) []streamblocks.Event {
	t.Helper()
	var events []streamblocks.Event
	for _, f := range fragments {
		got, err := p.Feed(f)
		require.NoError(t, err)
		events = append(events, got...)
	}
	return append(events, p.Finalize()...)
}

func ofType[E streamblocks.Event](events []streamblocks.Event) []E {
	var out []E
	for _, e := range events {
		if v, ok := e.(E); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestProcessor_PlainText(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	events := run(t, p, "Hello, world!\n")

	assert.Equal(t, []streamblocks.Event{
		streamblocks.EventStreamStarted{StreamID: "s1", Timestamp: fixedNow},
		streamblocks.EventText{Text: "Hello, world!\n", LineNumber: 1, Timestamp: fixedNow},
		streamblocks.EventStreamFinished{StreamID: "s1", Lines: 1, Timestamp: fixedNow},
	}, events)
}

func scenarioB() []streamblocks.Event {
	header := map[string]any{"id": "t1", "block_type": "task"}
	return []streamblocks.Event{
		streamblocks.EventStreamStarted{StreamID: "s1", Timestamp: fixedNow},
		streamblocks.EventBlockOpened{
			BlockID:    "t1",
			BlockType:  "task",
			Syntax:     syntax.NameDelimiterPreamble,
			LineNumber: 1,
			Timestamp:  fixedNow,
		},
		streamblocks.EventBlockContent{
			BlockID:    "t1",
			Section:    streamblocks.SectionContent,
			Line:       "Do X\n",
			LineNumber: 2,
			Timestamp:  fixedNow,
		},
		streamblocks.EventBlockExtracted{
			Block: streamblocks.Block{
				ID:         "t1",
				Type:       "task",
				Syntax:     syntax.NameDelimiterPreamble,
				Metadata:   header,
				Content:    "Do X\n",
				RawContent: "Do X\n",
				Header:     header,
				StartLine:  1,
				EndLine:    3,
			},
			Timestamp: fixedNow,
		},
		streamblocks.EventStreamFinished{StreamID: "s1", Lines: 3, Extracted: 1, Timestamp: fixedNow},
	}
}

func TestProcessor_ExtractsBlock(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
	assert.Equal(t, scenarioB(), run(t, p, "!!t1:task\nDo X\n!!end\n"))
	assert.Equal(t, streamblocks.StateOutside, p.State())
}

func TestProcessor_FragmentedInput(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
	assert.Equal(t, scenarioB(), run(t, p, "!!t1:t", "ask\nDo ", "X\n!!end\n"))
}

func TestProcessor_UnknownBlockType(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	events := run(t, p, "!!t1:ghost\nX\n!!end\n")

	opened := ofType[streamblocks.EventBlockOpened](events)
	require.Len(t, opened, 1)
	assert.Equal(t, "ghost", opened[0].BlockType)

	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 1)
	assert.Equal(t, "t1", rejected[0].BlockID)
	assert.Equal(t, "ghost", rejected[0].BlockType)
	assert.Equal(t, streamblocks.ReasonUnknownBlockType, rejected[0].Rejection.Reason)
	assert.Equal(t, "X\n", rejected[0].Rejection.PartialContent)
	assert.Equal(t, 3, rejected[0].Rejection.LineNumber)
	assert.Equal(t, 1, rejected[0].Rejection.StartLine)
	assert.Empty(t, ofType[streamblocks.EventBlockExtracted](events))
}

func TestProcessor_UnclosedBlock(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	events, err := p.Feed("!!t1:task\nline one\nline two\n")
	require.NoError(t, err)
	assert.Empty(t, ofType[streamblocks.EventBlockRejected](events))
	assert.Equal(t, streamblocks.StateInContent, p.State())

	events = p.Finalize()
	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 1)
	assert.Equal(t, streamblocks.ReasonUnclosedBlock, rejected[0].Rejection.Reason)
	assert.Equal(t, "line one\nline two\n", rejected[0].Rejection.PartialContent)

	finished := ofType[streamblocks.EventStreamFinished](events)
	require.Len(t, finished, 1)
	assert.Equal(t, 1, finished[0].Rejected)
	assert.IsType(t, streamblocks.EventStreamFinished{}, events[len(events)-1])
}

func TestProcessor_TrailingPartialLine(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
		events := run(t, p, "no newline")
		text := ofType[streamblocks.EventText](events)
		require.Len(t, text, 1)
		assert.Equal(t, "no newline", text[0].Text)
	})

	t.Run("close marker", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
		events := run(t, p, "!!t1:task\nDo X\n!!end")
		extracted := ofType[streamblocks.EventBlockExtracted](events)
		require.Len(t, extracted, 1)
		assert.Equal(t, "Do X\n", extracted[0].Block.RawContent)
	})
}

func TestProcessor_SplitInvariance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		syn   streamblocks.Syntax
		input string
	}{
		{
			name:  "delimiter preamble",
			syn:   syntax.NewDelimiterPreamble(""),
			input: "intro ✓\n!!t1:task:high\nDo X — now\n!!end\n!!t2:ghost\nY\n!!end\ntail",
		},
		{
			name:  "delimiter frontmatter",
			syn:   syntax.NewDelimiterFrontmatter(""),
			input: "héllo\n!!start\n---\nid: f1\nblock_type: task\n---\nbödy\n!!end\n",
		},
		{
			name:  "markdown frontmatter",
			syn:   syntax.NewMarkdownFrontmatter(),
			input: "text\n```task\n---\nid: m1\n---\n日本語\n```\n~~~task\nunclosed\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			want := run(t, newProcessor(t, taskRegistry(t), tc.syn), tc.input)
			for i := 1; i < len(tc.input); i++ {
				got := run(t, newProcessor(t, taskRegistry(t), tc.syn), tc.input[:i], tc.input[i:])
				require.Equal(t, want, got, "split at byte %d", i)
			}

			bytewise := make([]string, len(tc.input))
			for i := range tc.input {
				bytewise[i] = tc.input[i : i+1]
			}
			assert.Equal(t, want, run(t, newProcessor(t, taskRegistry(t), tc.syn), bytewise...))
		})
	}
}

func TestProcessor_DelimiterFrontmatter(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterFrontmatter(""))

	events := run(t, p, "!!start\n---\nid: f1\nblock_type: task\npriority: 2\n---\nbody\n!!end\n")

	opened := ofType[streamblocks.EventBlockOpened](events)
	require.Len(t, opened, 1)
	assert.Empty(t, opened[0].BlockID)
	assert.Empty(t, opened[0].BlockType)

	content := ofType[streamblocks.EventBlockContent](events)
	require.Len(t, content, 6)
	for _, c := range content[:5] {
		assert.Equal(t, streamblocks.SectionHeader, c.Section)
	}
	assert.Equal(t, streamblocks.SectionContent, content[5].Section)

	extracted := ofType[streamblocks.EventBlockExtracted](events)
	require.Len(t, extracted, 1)
	b := extracted[0].Block
	assert.Equal(t, "f1", b.ID)
	assert.Equal(t, "task", b.Type)
	assert.Equal(t, "body\n", b.RawContent)
	assert.Equal(t, 2, b.Header["priority"])
	assert.Equal(t, 1, b.StartLine)
	assert.Equal(t, 8, b.EndLine)
}

func TestProcessor_MarkdownFrontmatter(t *testing.T) {
	t.Parallel()

	t.Run("extracts", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewMarkdownFrontmatter())
		events := run(t, p, "```task\n---\nid: m1\n---\nhello\n```\n")
		extracted := ofType[streamblocks.EventBlockExtracted](events)
		require.Len(t, extracted, 1)
		assert.Equal(t, "m1", extracted[0].Block.ID)
		assert.Equal(t, "hello\n", extracted[0].Block.Content)
	})

	t.Run("missing frontmatter", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewMarkdownFrontmatter())
		events := run(t, p, "```task\nhello\n```\n")
		rejected := ofType[streamblocks.EventBlockRejected](events)
		require.Len(t, rejected, 1)
		assert.Equal(t, streamblocks.ReasonInvalidHeader, rejected[0].Rejection.Reason)
		assert.Equal(t, "hello\n", rejected[0].Rejection.PartialContent)
	})

	t.Run("unknown fence type without frontmatter", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewMarkdownFrontmatter())
		events := run(t, p, "```ghost\nno frontmatter\n```\n")
		rejected := ofType[streamblocks.EventBlockRejected](events)
		require.Len(t, rejected, 1)
		assert.Equal(t, "ghost", rejected[0].BlockType)
		assert.Equal(t, streamblocks.ReasonUnknownBlockType, rejected[0].Rejection.Reason)
		assert.Equal(t, "no frontmatter\n", rejected[0].Rejection.PartialContent)
	})

	t.Run("shorter fence is content", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewMarkdownFrontmatter())
		events := run(t, p, "````task\n---\nid: m1\n---\n```\ncode\n```\n````\n")
		extracted := ofType[streamblocks.EventBlockExtracted](events)
		require.Len(t, extracted, 1)
		assert.Equal(t, "```\ncode\n```\n", extracted[0].Block.RawContent)
	})
}

func TestProcessor_OpenMarkerInsideBlockIsContent(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	events := run(t, p, "!!a:task\n!!b:task\n!!end\n")

	assert.Len(t, ofType[streamblocks.EventBlockOpened](events), 1)
	extracted := ofType[streamblocks.EventBlockExtracted](events)
	require.Len(t, extracted, 1)
	assert.Equal(t, "a", extracted[0].Block.ID)
	assert.Equal(t, "!!b:task\n", extracted[0].Block.RawContent)
}

func TestProcessor_MaxBlockSize(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
		c.MaxBlockSize = 10
	})

	events := run(t, p,
		"!!a:task\n",
		"short\n",
		"0123456789\n",
		"skipped\n",
		"!!end\n",
		"after\n",
		"!!b:task\nok\n!!end\n",
	)

	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 1)
	assert.Equal(t, "a", rejected[0].BlockID)
	assert.Equal(t, streamblocks.ReasonMaxSizeExceeded, rejected[0].Rejection.Reason)
	assert.Equal(t, "short\n", rejected[0].Rejection.PartialContent)
	assert.Equal(t, 3, rejected[0].Rejection.LineNumber)

	text := ofType[streamblocks.EventText](events)
	require.Len(t, text, 1)
	assert.Equal(t, "after\n", text[0].Text)
	assert.Equal(t, 6, text[0].LineNumber)

	extracted := ofType[streamblocks.EventBlockExtracted](events)
	require.Len(t, extracted, 1)
	assert.Equal(t, "b", extracted[0].Block.ID)
	assert.Equal(t, 7, extracted[0].Block.StartLine)
}

func TestProcessor_MaxBlockSize_UnterminatedLine(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
		c.MaxBlockSize = 10
	})

	_, err := p.Feed("!!t1:task\n")
	require.NoError(t, err)

	events, err := p.Feed(strings.Repeat("x", 1024))
	require.NoError(t, err)
	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 1)
	assert.Equal(t, "t1", rejected[0].BlockID)
	assert.Equal(t, streamblocks.ReasonMaxSizeExceeded, rejected[0].Rejection.Reason)
	assert.Empty(t, rejected[0].Rejection.PartialContent)
	assert.Equal(t, 2, rejected[0].Rejection.LineNumber)
	assert.Equal(t, streamblocks.StateOutside, p.State())
	assert.Zero(t, p.Pending())

	for range 100 {
		events, err = p.Feed(strings.Repeat("x", 1024))
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Zero(t, p.Pending())
	}

	events, err = p.Feed("\n!!end\nafter\n")
	require.NoError(t, err)
	events = append(events, p.Finalize()...)

	assert.Empty(t, ofType[streamblocks.EventBlockRejected](events))
	text := ofType[streamblocks.EventText](events)
	require.Len(t, text, 1)
	assert.Equal(t, "after\n", text[0].Text)
	assert.Equal(t, 4, text[0].LineNumber)

	finished := ofType[streamblocks.EventStreamFinished](events)
	require.Len(t, finished, 1)
	assert.Equal(t, 4, finished[0].Lines)
	assert.Equal(t, 1, finished[0].Rejected)
}

func TestProcessor_MaxBlockSize_LongLineSplitInvariance(t *testing.T) {
	t.Parallel()
	limit := func(c *streamblocks.Config) { c.MaxBlockSize = 10 }
	doc := "!!t1:task\nok\n" + strings.Repeat("x", 1000) + "\n!!end\nafter\n"

	want := run(t, newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), limit), doc)

	var fragments []string
	for i := 0; i < len(doc); i += 100 {
		fragments = append(fragments, doc[i:min(i+100, len(doc))])
	}
	got := run(t, newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), limit), fragments...)

	assert.Equal(t, want, got)
	require.Len(t, ofType[streamblocks.EventBlockRejected](got), 1)
}

func TestProcessor_MaxBlockSize_LongLineWhileSkipping(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
		c.MaxBlockSize = 10
	})

	events, err := p.Feed("!!a:task\n0123456789\n")
	require.NoError(t, err)
	require.Len(t, ofType[streamblocks.EventBlockRejected](events), 1)

	_, err = p.Feed(strings.Repeat("y", 4096))
	require.NoError(t, err)
	assert.Zero(t, p.Pending())

	events = run(t, p, "\n!!end\n!!b:task\nok\n!!end\n")
	extracted := ofType[streamblocks.EventBlockExtracted](events)
	require.Len(t, extracted, 1)
	assert.Equal(t, "b", extracted[0].Block.ID)
	assert.Empty(t, ofType[streamblocks.EventBlockRejected](events))
}

func TestProcessor_MaxBlockSize_FinalizeWhileSkipping(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
		c.MaxBlockSize = 5
	})

	events := run(t, p, "!!a:task\n0123456789\nmore\n!!end\n!!end\nx\n!!b:task\n0123456789\n")

	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 2)
	assert.Equal(t, "a", rejected[0].BlockID)
	assert.Equal(t, streamblocks.ReasonMaxSizeExceeded, rejected[0].Rejection.Reason)
	assert.Equal(t, "b", rejected[1].BlockID)
	assert.Equal(t, streamblocks.ReasonMaxSizeExceeded, rejected[1].Rejection.Reason)

	text := ofType[streamblocks.EventText](events)
	require.Len(t, text, 2)
	assert.Equal(t, "!!end\n", text[0].Text)
	assert.Equal(t, "x\n", text[1].Text)
}

func TestProcessor_CloseMarkerOutsideIsText(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	events := run(t, p, "!!end\nhello\n")

	text := ofType[streamblocks.EventText](events)
	require.Len(t, text, 2)
	assert.Equal(t, "!!end\n", text[0].Text)
	assert.Equal(t, 1, text[0].LineNumber)
	assert.Equal(t, "hello\n", text[1].Text)
	assert.Empty(t, ofType[streamblocks.EventBlockRejected](events))
	assert.Empty(t, ofType[streamblocks.EventBlockOpened](events))
}

func TestProcessor_ValidationPipeline(t *testing.T) {
	t.Parallel()

	newReg := func(t *testing.T, meta streamblocks.MetadataSchema, content streamblocks.ContentSchema, validators ...streamblocks.Validator) *streamblocks.Registry {
		reg := streamblocks.NewRegistry()
		require.NoError(t, reg.Register("task", meta, content, validators...))
		return reg
	}
	reject := func(t *testing.T, reg *streamblocks.Registry) streamblocks.EventBlockRejected {
		t.Helper()
		p := newProcessor(t, reg, syntax.NewDelimiterPreamble(""))
		rejected := ofType[streamblocks.EventBlockRejected](run(t, p, "!!t1:task\nbody\n!!end\n"))
		require.Len(t, rejected, 1)
		return rejected[0]
	}

	t.Run("invalid metadata", func(t *testing.T) {
		t.Parallel()
		meta := &mock.MetadataSchema{ValidateMetadataFn: func(map[string]any) (any, error) {
			return nil, streamblocks.NewSchemaError("priority", "required")
		}}
		r := reject(t, newReg(t, meta, schema.Text()))
		assert.Equal(t, streamblocks.ReasonInvalidMetadata, r.Rejection.Reason)
		assert.Equal(t, []streamblocks.FieldError{{Field: "priority", Message: "required"}}, r.Rejection.Errors)
		assert.Equal(t, "priority: required", r.Rejection.Message)
	})

	t.Run("content not parsed after metadata failure", func(t *testing.T) {
		t.Parallel()
		called := false
		meta := &mock.MetadataSchema{ValidateMetadataFn: func(map[string]any) (any, error) {
			return nil, errors.New("bad")
		}}
		content := &mock.ContentSchema{ParseContentFn: func(string) (any, error) {
			called = true
			return nil, nil
		}}
		reject(t, newReg(t, meta, content))
		assert.False(t, called)
	})

	t.Run("invalid content", func(t *testing.T) {
		t.Parallel()
		r := reject(t, newReg(t, schema.Any(), schema.ContentFunc(func(string) (any, error) {
			return nil, errors.New("not json")
		})))
		assert.Equal(t, streamblocks.ReasonInvalidContent, r.Rejection.Reason)
		assert.Equal(t, "not json", r.Rejection.Message)
		assert.Empty(t, r.Rejection.Errors)
	})

	t.Run("validator", func(t *testing.T) {
		t.Parallel()
		var order []string
		v := func(name string, err error) streamblocks.Validator {
			return func(*streamblocks.ValidationContext, streamblocks.Block) error {
				order = append(order, name)
				return err
			}
		}
		reg := newReg(t, schema.Any(), schema.Text(), v("first", nil), v("second", errors.New("nope")), v("third", nil))
		r := reject(t, reg)
		assert.Equal(t, streamblocks.ReasonValidationFailed, r.Rejection.Reason)
		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func TestProcessor_UniqueBlockIDs(t *testing.T) {
	t.Parallel()
	reg := taskRegistry(t)
	require.NoError(t, reg.AddGlobalValidator(streamblocks.UniqueBlockIDs()))
	p := newProcessor(t, reg, syntax.NewDelimiterPreamble(""))

	events := run(t, p, "!!t1:task\na\n!!end\n!!t1:task\nb\n!!end\n!!t2:task\nc\n!!end\n")

	extracted := ofType[streamblocks.EventBlockExtracted](events)
	require.Len(t, extracted, 2)
	assert.Equal(t, "t1", extracted[0].Block.ID)
	assert.Equal(t, "t2", extracted[1].Block.ID)

	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 1)
	assert.Equal(t, streamblocks.ReasonValidationFailed, rejected[0].Rejection.Reason)
	assert.Contains(t, rejected[0].Rejection.Message, `duplicate block id "t1"`)
}

func TestProcessor_EmissionPolicy(t *testing.T) {
	t.Parallel()
	input := "hi\n!!t1:task\nDo X\n!!end\n"

	t.Run("text deltas off", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
			c.EmitTextDeltas = false
		})
		events := run(t, p, input)
		assert.Empty(t, ofType[streamblocks.EventText](events))
		assert.Len(t, ofType[streamblocks.EventBlockContent](events), 1)
		assert.Len(t, ofType[streamblocks.EventBlockExtracted](events), 1)
	})

	t.Run("block content off", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
			c.EmitBlockContent = false
		})
		events := run(t, p, input)
		assert.Len(t, ofType[streamblocks.EventText](events), 1)
		assert.Empty(t, ofType[streamblocks.EventBlockContent](events))
		assert.Len(t, ofType[streamblocks.EventBlockExtracted](events), 1)
	})

	t.Run("lifecycle events always emitted", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
			c.EmitTextDeltas = false
			c.EmitBlockContent = false
		})
		events := run(t, p, input)
		require.Len(t, events, 4)
		assert.IsType(t, streamblocks.EventStreamStarted{}, events[0])
		assert.IsType(t, streamblocks.EventBlockOpened{}, events[1])
		assert.IsType(t, streamblocks.EventBlockExtracted{}, events[2])
		assert.IsType(t, streamblocks.EventStreamFinished{}, events[3])
		for _, e := range events {
			assert.Equal(t, fixedNow, e.EventTime())
		}
	})
}

func TestProcessor_OriginalEvents(t *testing.T) {
	t.Parallel()

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
			c.EmitOriginalEvents = true
		})
		raw := map[string]string{"delta": "hi\n"}
		events, err := p.FeedChunk(streamblocks.Chunk{Text: "hi\n", Original: raw})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.IsType(t, streamblocks.EventStreamStarted{}, events[0])
		assert.Equal(t, streamblocks.EventOriginal{Chunk: raw, Timestamp: fixedNow}, events[1])
		assert.IsType(t, streamblocks.EventText{}, events[2])
	})

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()
		p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
		events, err := p.FeedChunk(streamblocks.Chunk{Text: "hi", Original: "raw"})
		require.NoError(t, err)
		assert.Empty(t, ofType[streamblocks.EventOriginal](events))
	})
}

func TestProcessor_Finalize(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	events := run(t, p, "hi\n")
	require.NotEmpty(t, events)
	assert.Empty(t, p.Finalize())

	_, err := p.Feed("more\n")
	assert.ErrorIs(t, err, streamblocks.ErrProcessorFinalized)
}

func TestProcessor_FinalizeEmptyStream(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
	assert.Equal(t, []streamblocks.Event{
		streamblocks.EventStreamStarted{StreamID: "s1", Timestamp: fixedNow},
		streamblocks.EventStreamFinished{StreamID: "s1", Timestamp: fixedNow},
	}, p.Finalize())
}

func TestProcessor_Reset(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))

	_, err := p.Feed("!!t1:task\npartial")
	require.NoError(t, err)
	p.Reset()
	assert.Equal(t, streamblocks.StateOutside, p.State())
	assert.Equal(t, 0, p.LineNumber())

	assert.Equal(t, scenarioB(), run(t, p, "!!t1:task\nDo X\n!!end\n"))
}

func TestProcessor_LineNumber(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""))
	_, err := p.Feed("a\nb\nc")
	require.NoError(t, err)
	assert.Equal(t, 2, p.LineNumber())
	p.Finalize()
	assert.Equal(t, 3, p.LineNumber())
}

func TestProcessor_LogsRejections(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterPreamble(""), func(c *streamblocks.Config) {
		c.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	})

	run(t, p, "!!t1:ghost\nX\n!!end\nplain\n")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "block rejected"))
	assert.Contains(t, out, "reason=unknown_block_type")
	assert.Contains(t, out, "block_id=t1")
	assert.Contains(t, out, "stream_id=s1")
}

func TestProcessor_SyntaxContract(t *testing.T) {
	t.Parallel()
	var headers [][]string
	syn := &mock.Syntax{
		DetectOpenFn: func(line string) (streamblocks.Opening, bool) {
			if line == "<begin>\n" {
				return streamblocks.Opening{Marker: "<end>"}, true
			}
			return streamblocks.Opening{}, false
		},
		DetectCloseFn: func(open streamblocks.Opening, line string) bool {
			return line == open.Marker+"\n"
		},
		HeaderCompleteFn: func(lines []string) bool {
			headers = append(headers, append([]string(nil), lines...))
			return len(lines) == 1
		},
		ParseHeaderFn: func(_ streamblocks.Opening, lines []string) (streamblocks.Header, error) {
			id := strings.TrimSpace(lines[0])
			return streamblocks.Header{ID: id, Type: "task", Fields: map[string]any{"id": id}}, nil
		},
	}
	p := newProcessor(t, taskRegistry(t), syn)

	events := run(t, p, "<begin>\nx1\nbody\n<end>\n")

	assert.Equal(t, [][]string{nil, {"x1\n"}}, headers)
	extracted := ofType[streamblocks.EventBlockExtracted](events)
	require.Len(t, extracted, 1)
	assert.Equal(t, "x1", extracted[0].Block.ID)
	assert.Equal(t, "mock", extracted[0].Block.Syntax)
	assert.Equal(t, "body\n", extracted[0].Block.RawContent)
}

func TestProcessor_HeaderWithoutType(t *testing.T) {
	t.Parallel()
	p := newProcessor(t, taskRegistry(t), syntax.NewDelimiterFrontmatter(""))

	events := run(t, p, "!!start\n---\nid: f1\n---\nbody\n!!end\n")

	rejected := ofType[streamblocks.EventBlockRejected](events)
	require.Len(t, rejected, 1)
	assert.Equal(t, streamblocks.ReasonInvalidHeader, rejected[0].Rejection.Reason)
	assert.Equal(t, "---\nid: f1\n---\nbody\n", rejected[0].Rejection.PartialContent)
}

func TestNewProcessor_FreezesRegistry(t *testing.T) {
	t.Parallel()
	reg := taskRegistry(t)
	assert.False(t, reg.Frozen())

	newProcessor(t, reg, syntax.NewDelimiterPreamble(""))

	assert.True(t, reg.Frozen())
	err := reg.Register("note", schema.Any(), schema.Text())
	assert.ErrorIs(t, err, streamblocks.ErrRegistryFrozen)

	// A frozen registry can still back more processors.
	newProcessor(t, reg, syntax.NewMarkdownFrontmatter())
}

func TestNewProcessor_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := streamblocks.NewProcessor(nil, streamblocks.DefaultConfig(syntax.NewDelimiterPreamble("")))
	assert.ErrorIs(t, err, streamblocks.ErrValidation)

	_, err = streamblocks.NewProcessor(streamblocks.NewRegistry(), streamblocks.Config{})
	assert.ErrorIs(t, err, streamblocks.ErrValidation)
}

func TestParseState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "outside", streamblocks.StateOutside.String())
	assert.Equal(t, "in_header", streamblocks.StateInHeader.String())
	assert.Equal(t, "in_content", streamblocks.StateInContent.String())
	assert.Equal(t, "ParseState(9)", streamblocks.ParseState(9).String())
}
