package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Play writes the frames to w as a terminal animation, clearing the screen
// before each frame and pausing delay between frames.
func Play(ctx context.Context, w io.Writer, a *Animation, delay time.Duration) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for t := range a.Len() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if _, err := io.WriteString(w, clearScreen+a.Frame(t)); err != nil {
			return fmt.Errorf("writing frame %d: %w", t, err)
		}
		timer.Reset(delay)
	}
	return nil
}

// WriteEvents writes one line per event in computation order.
func WriteEvents(w io.Writer, tr Trace) error {
	for i, ev := range tr.Events {
		if _, err := fmt.Fprintf(w, "%4d  %s\n", i, ev); err != nil {
			return err
		}
	}
	return nil
}

// terminalizer is a recording for the terminalizer GIF renderer.
type terminalizer struct {
	Config  terminalizerConfig   `yaml:"config"`
	Records []terminalizerRecord `yaml:"records"`
}

type terminalizerConfig struct {
	Cols        int               `yaml:"cols"`
	Rows        int               `yaml:"rows"`
	Repeat      int               `yaml:"repeat"`
	Quality     int               `yaml:"quality"`
	FrameDelay  string            `yaml:"frameDelay"`
	MaxIdleTime int               `yaml:"maxIdleTime"`
	FrameBox    terminalizerBox   `yaml:"frameBox"`
	Watermark   terminalizerMark  `yaml:"watermark"`
	FontFamily  string            `yaml:"fontFamily"`
	FontSize    int               `yaml:"fontSize"`
	Theme       map[string]string `yaml:"theme"`
}

type terminalizerBox struct {
	Type  *string  `yaml:"type"`
	Title *string  `yaml:"title"`
	Style []string `yaml:"style"`
}

type terminalizerMark struct {
	ImagePath *string `yaml:"imagePath"`
}

type terminalizerRecord struct {
	Delay   int    `yaml:"delay"`
	Content string `yaml:"content"`
}

// WriteTerminalizer writes the animation as a terminalizer recording. The
// first frame is shown immediately and every later one after delay.
func WriteTerminalizer(w io.Writer, a *Animation, delay time.Duration) error {
	frames := a.Frames()

	lines := strings.Split(frames[0], "\n")
	cols := 0
	for _, l := range lines {
		cols = max(cols, len(l))
	}

	rec := terminalizer{
		Config: terminalizerConfig{
			Cols:        cols,
			Rows:        len(lines) + 1,
			Quality:     100,
			FrameDelay:  "auto",
			MaxIdleTime: 2000,
			FrameBox:    terminalizerBox{Style: []string{}},
			FontFamily:  "Monaco, Lucida Console, Ubuntu Mono, Monospace",
			FontSize:    12,
			Theme:       map[string]string{"background": "#000000"},
		},
		Records: make([]terminalizerRecord, len(frames)),
	}
	for i, f := range frames {
		d := delay
		if i == 0 {
			d = 0
		}
		rec.Records[i] = terminalizerRecord{
			Delay:   int(d.Milliseconds()),
			Content: strings.ReplaceAll(clearScreen+f, "\n", "\r\n"),
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding terminalizer recording: %w", err)
	}
	return enc.Close()
}
