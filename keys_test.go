package readline

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, input string) []Key {
	t.Helper()
	d := newKeyDecoder(bytes.NewReader([]byte(input)))
	var keys []Key
	for {
		k, err := d.next()
		if errors.Is(err, ErrInputClosed) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, k)
	}
}

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Key
	}{
		{name: "printable", input: "a", want: []Key{PlainKey('a')}},
		{name: "control", input: "\x01", want: []Key{CtrlKey('a')}},
		{name: "enter cr", input: "\r", want: []Key{PlainKey(KeyEnter)}},
		{name: "enter lf", input: "\n", want: []Key{PlainKey(KeyEnter)}},
		{name: "backspace del", input: "\x7f", want: []Key{PlainKey(KeyBackspace)}},
		{name: "backspace bs", input: "\b", want: []Key{PlainKey(KeyBackspace)}},
		{name: "tab", input: "\t", want: []Key{PlainKey(KeyTab)}},
		{name: "alt letter", input: "\x1bb", want: []Key{AltKey('b')}},
		{name: "alt uppercase folds", input: "\x1bF", want: []Key{AltKey('f')}},
		{name: "alt dot", input: "\x1b.", want: []Key{AltKey('.')}},
		{name: "alt backspace", input: "\x1b\x7f", want: []Key{AltKey(KeyBackspace)}},
		{name: "arrow up", input: "\x1b[A", want: []Key{PlainKey(KeyUp)}},
		{name: "arrow left", input: "\x1b[D", want: []Key{PlainKey(KeyLeft)}},
		{name: "home letter", input: "\x1b[H", want: []Key{PlainKey(KeyHome)}},
		{name: "end letter", input: "\x1b[F", want: []Key{PlainKey(KeyEnd)}},
		{name: "backtab", input: "\x1b[Z", want: []Key{PlainKey(KeyBacktab)}},
		{name: "home tilde", input: "\x1b[1~", want: []Key{PlainKey(KeyHome)}},
		{name: "insert", input: "\x1b[2~", want: []Key{PlainKey(KeyInsert)}},
		{name: "delete", input: "\x1b[3~", want: []Key{PlainKey(KeyDelete)}},
		{name: "end tilde", input: "\x1b[4~", want: []Key{PlainKey(KeyEnd)}},
		{name: "page up", input: "\x1b[5~", want: []Key{PlainKey(KeyPageUp)}},
		{name: "page down", input: "\x1b[6~", want: []Key{PlainKey(KeyPageDown)}},
		{name: "ctrl right aliases alt", input: "\x1b[1;5C", want: []Key{AltKey(KeyRight)}},
		{name: "alt left", input: "\x1b[1;3D", want: []Key{AltKey(KeyLeft)}},
		{name: "shift arrow is plain", input: "\x1b[1;2A", want: []Key{PlainKey(KeyUp)}},
		{name: "ss3 f1", input: "\x1bOP", want: []Key{PlainKey(KeyF1)}},
		{name: "ss3 f4", input: "\x1bOS", want: []Key{PlainKey(KeyF4)}},
		{name: "ss3 arrow", input: "\x1bOA", want: []Key{PlainKey(KeyUp)}},
		{name: "utf8", input: "é", want: []Key{PlainKey('é')}},
		{name: "lone escape", input: "\x1b", want: []Key{PlainKey(KeyEscape)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, decodeAll(t, tt.input))
		})
	}
}

func TestDecodeUnknownSequenceResyncs(t *testing.T) {
	keys := decodeAll(t, "\x1b[9~x\x1b[99;99Xw\x1bOzy")
	require.Equal(t, []Key{
		PlainKey(KeyUnknown),
		PlainKey('x'),
		PlainKey(KeyUnknown),
		PlainKey('w'),
		PlainKey(KeyUnknown),
		PlainKey('y'),
	}, keys)
}

func TestDecodeAbsorbsWholeUnsupportedSequence(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "overlong parameters", input: "\x1b[1234567890~a"},
		{name: "private mode", input: "\x1b[?25ha"},
		{name: "sgr mouse report", input: "\x1b[<0;12;5Ma"},
		{name: "intermediate byte", input: "\x1b[1 qa"},
		{name: "truncated utf-8", input: "\xc3a"},
		{name: "utf-8 cut by escape", input: "\xe2\x82\x1b[Ca"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := decodeAll(t, tt.input)
			require.Equal(t, PlainKey(KeyUnknown), keys[0])
			require.Equal(t, PlainKey('a'), keys[len(keys)-1])
		})
	}
}

func TestDecodeExactKeysAfterUnsupportedSequence(t *testing.T) {
	require.Equal(t, []Key{PlainKey(KeyUnknown), PlainKey('a')}, decodeAll(t, "\x1b[1234567890~a"))
	require.Equal(t, []Key{PlainKey(KeyUnknown), PlainKey('a')}, decodeAll(t, "\x1b[?25ha"))
	require.Equal(t, []Key{PlainKey(KeyUnknown), PlainKey('a')}, decodeAll(t, "\x1b[<0;1;1Ma"))
	require.Equal(t, []Key{PlainKey(KeyUnknown), PlainKey('a')}, decodeAll(t, "\xc3a"))
	require.Equal(t, []Key{PlainKey(KeyUnknown), PlainKey(KeyRight), PlainKey('a')}, decodeAll(t, "\xe2\x82\x1b[Ca"))
}

func TestDecodeControlByteInsideSequence(t *testing.T) {
	require.Equal(t, []Key{PlainKey(KeyUnknown), PlainKey(KeyEnter)}, decodeAll(t, "\x1b[12\r"))
}

func TestDecodeUnterminatedSequenceIsBounded(t *testing.T) {
	input := "\x1b[" + strings.Repeat("1", maxSequenceScan+10) + "a"
	keys := decodeAll(t, input)
	require.Equal(t, PlainKey(KeyUnknown), keys[0])
	require.Equal(t, PlainKey('a'), keys[len(keys)-1])
	require.Len(t, keys, 1+9+1)
}

func TestDecodeTruncatedSequence(t *testing.T) {
	d := newKeyDecoder(bytes.NewReader([]byte("\x1b[1;")))
	k, err := d.next()
	require.NoError(t, err)
	require.Equal(t, PlainKey(KeyEscape), k)

	_, err = d.next()
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestKeyString(t *testing.T) {
	require.Equal(t, "Ctrl+R", CtrlKey('r').String())
	require.Equal(t, "Alt+b", AltKey('b').String())
	require.Equal(t, "Alt+Left", AltKey(KeyLeft).String())
	require.Equal(t, "x", PlainKey('x').String())
}

func TestIsPrintable(t *testing.T) {
	require.True(t, PlainKey('a').isPrintable(false))
	require.False(t, PlainKey('é').isPrintable(false))
	require.True(t, PlainKey('é').isPrintable(true))
	require.False(t, AltKey('a').isPrintable(true))
	require.False(t, CtrlKey('a').isPrintable(true))
	require.False(t, PlainKey(KeyUp).isPrintable(true))
}
