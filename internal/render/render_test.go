package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrjoshuak/go-lifting/internal/schedule"
	"github.com/mrjoshuak/go-lifting/internal/vc2"
)

func TestDrawArray(t *testing.T) {
	cells := []Cell{
		{Value: 97, Known: true, Appearance: Dashed},
		{Value: 73, Known: true, Appearance: Dashed},
		{Value: 33, Known: true, Appearance: Dashed},
		{Value: 79, Known: true, Appearance: Solid},
		{Value: 45, Known: true, Appearance: Solid},
	}
	want := strings.Join([]string{
		" _ _ _ _ _ _ _ _ _ ===== =====",
		"; 97  ; 73  ; 33  | 79  | 45  |",
		"'- - -'- - -'- - -'====='====='",
	}, "\n")
	assert.Equal(t, want, DrawArray(cells, DefaultBoxWidth))
}

func TestDrawArray_UnknownAndHidden(t *testing.T) {
	cells := []Cell{
		{Value: 1, Known: true, Appearance: Solid},
		{Value: 2, Known: false, Appearance: Dashed},
		{Value: 3, Known: true, Appearance: Hidden},
		{Value: 4, Known: true, Appearance: NoBorder},
	}
	lines := strings.Split(DrawArray(cells, DefaultBoxWidth), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " ===== _ _ _", lines[0])
	assert.Equal(t, "|  1  |     ;        4", lines[1])
	assert.NotContains(t, lines[1], "2")
	assert.NotContains(t, lines[1], "3")
}

func TestDrawArray_Empty(t *testing.T) {
	assert.Equal(t, "\n\n", DrawArray(nil, DefaultBoxWidth))
}

func TestDrawConnections(t *testing.T) {
	got := DrawConnections([]int{4, 2, 3}, 3, DefaultBoxWidth)
	want := strings.Join([]string{
		strings.Repeat(" ", 15) + "|     |     |",
		strings.Repeat(" ", 15) + "+-----+-----+",
		strings.Repeat(" ", 21) + "|",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestDrawConnections_DestOutsideSources(t *testing.T) {
	lines := strings.Split(DrawConnections([]int{0}, 2, DefaultBoxWidth), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "   |", lines[0])
	assert.Equal(t, "   +"+strings.Repeat("-", 11)+"+", lines[1])
	assert.Equal(t, strings.Repeat(" ", 15)+"|", lines[2])

	assert.Equal(t, "\n\n", DrawConnections(nil, 0, DefaultBoxWidth))
}

func TestAppearance_String(t *testing.T) {
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "no_border", NoBorder.String())
	assert.Equal(t, "dashed_border", Dashed.String())
	assert.Equal(t, "solid_border", Solid.String())
	assert.Equal(t, "unknown", Appearance(9).String())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Le Gall 5 3", Title("le_gall_5_3"))
	assert.Equal(t, "Haar No Shift", Title("haar_no_shift"))
}

// haarTrace analyzes [1 3 5 7] with the Haar wavelet.
func haarTrace(t *testing.T) Trace {
	t.Helper()
	w, err := vc2.Wavelet(vc2.HaarNoShift)
	require.NoError(t, err)
	p, err := schedule.NewPipeline([]int{1, 3, 5, 7}, schedule.Analysis(w))
	require.NoError(t, err)
	res, err := schedule.Block{}.Run(p)
	require.NoError(t, err)

	return Trace{
		Title: "haar_no_shift",
		Rows: []Row{
			{Name: "Input", Versions: p.Versions(0)},
			{Name: "Encode Intermediate 1", Versions: p.Versions(1)},
			{Name: "Coefficients", Versions: p.Versions(2)},
		},
		Leaves: p.Input(),
		Events: res.Events,
	}
}

func TestAnimation_Frames(t *testing.T) {
	a := NewAnimation(haarTrace(t), 0)
	require.Equal(t, 5, a.Len())
	assert.Equal(t, DefaultBoxWidth, a.Width())

	first := a.Frame(0)
	assert.Contains(t, first, "Haar No Shift")
	assert.Contains(t, first, "Key:")
	assert.Contains(t, first, "|  1  |  3  |  5  |  7  |")
	assert.NotContains(t, first, "+-----+")

	// The first event predicts odd[0] from even[0].
	second := a.Frame(1)
	assert.Contains(t, second, "+-----+")

	last := a.Frame(a.Len() - 1)
	assert.Contains(t, last, "Coefficients          |  2  |  2  |  6  |  2  |")

	frames := a.Frames()
	require.Len(t, frames, a.Len())
	assert.Equal(t, last, frames[len(frames)-1])
}

func TestAnimation_WidthFitsValues(t *testing.T) {
	tr := haarTrace(t)
	tr.Leaves = []int{1, -123456, 5, 7}
	a := NewAnimation(tr, 0)
	assert.Equal(t, len("-123456")+2, a.Width())

	assert.Equal(t, 4, NewAnimation(tr, 4).Width())
}

func TestPlay(t *testing.T) {
	a := NewAnimation(haarTrace(t), 0)
	var buf bytes.Buffer
	require.NoError(t, Play(context.Background(), &buf, a, 0))
	assert.Equal(t, a.Len(), strings.Count(buf.String(), clearScreen))
}

func TestPlay_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Play(ctx, &buf, NewAnimation(haarTrace(t), 0), time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, haarTrace(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "s1.odd[0] = 2 <- s0.odd[0] s0.even[0]")
}

func TestWriteTerminalizer(t *testing.T) {
	a := NewAnimation(haarTrace(t), 0)
	var buf bytes.Buffer
	require.NoError(t, WriteTerminalizer(&buf, a, 25*time.Millisecond))

	var rec terminalizer
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rec))

	assert.Positive(t, rec.Config.Cols)
	assert.Positive(t, rec.Config.Rows)
	assert.Equal(t, "auto", rec.Config.FrameDelay)
	assert.Nil(t, rec.Config.FrameBox.Type)
	assert.Equal(t, "#000000", rec.Config.Theme["background"])

	require.Len(t, rec.Records, a.Len())
	assert.Equal(t, 0, rec.Records[0].Delay)
	assert.Equal(t, 25, rec.Records[1].Delay)
	assert.Contains(t, rec.Records[0].Content, "\r\n")
	assert.NotContains(t, strings.ReplaceAll(rec.Records[0].Content, "\r\n", ""), "\n")
}
