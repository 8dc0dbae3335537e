package plugin

import (
	"bytes"
	"errors"
	"image"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEncoding(t *testing.T) {
	line, err := EncodeLine(Command{Op: OpSetLoop, Enabled: boolPtr(false)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"set_loop","enabled":false}`, string(line))
	assert.True(t, bytes.HasSuffix(line, []byte("\n")))

	line, err = EncodeLine(Command{Op: OpPlay})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"play"}`, string(line))
}

func TestReaderSkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, Message{Event: EventReady}))
	buf.WriteString("\n\n")
	require.NoError(t, WriteLine(&buf, Message{Event: EventFrame, Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 4}}))

	r := NewReader(&buf)
	var m Message
	require.NoError(t, r.Next(&m))
	assert.Equal(t, EventReady, m.Event)

	m = Message{}
	require.NoError(t, r.Next(&m))
	assert.Equal(t, []byte{1, 2, 3, 4}, m.Pixels)

	assert.True(t, errors.Is(r.Next(&m), io.EOF))
}

func TestReaderReportsGarbage(t *testing.T) {
	r := NewReader(strings.NewReader("not json\n"))
	var m Message
	err := r.Next(&m)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestSurfaceBlit(t *testing.T) {
	var s surface
	s.resize(Message{Width: 3, Height: 3, BitsWidth: 4, BitsHeight: 4, Depth: 1})
	s.ClearDirty()

	ok := s.blit(Message{X: 2, Y: 2, Width: 3, Height: 3, Pixels: []byte{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}})
	require.True(t, ok)

	dirty, has := s.DirtyRect()
	assert.True(t, has)
	assert.Equal(t, image.Rect(2, 2, 4, 4), dirty)
	assert.Equal(t, byte(1), s.bits[2*4+2])
	assert.Equal(t, byte(2), s.bits[2*4+3])
	assert.Equal(t, byte(4), s.bits[3*4+2])

	assert.False(t, s.blit(Message{X: 9, Y: 9, Width: 1, Height: 1, Pixels: []byte{1}}))
	assert.False(t, s.blit(Message{X: 0, Y: 0, Width: 2, Height: 2, Pixels: []byte{1}}))
}

func TestSurfaceInvalidUntilSized(t *testing.T) {
	var s surface
	assert.False(t, s.Valid())
	s.resize(Message{Width: 1, Height: 1, BitsWidth: 1, BitsHeight: 1, Depth: 4})
	assert.True(t, s.Valid())
	s.resize(Message{})
	assert.False(t, s.Valid())
}
