package output

import (
	"strconv"

	"github.com/dl/godu/internal/walker"
)

// Formatter renders one walk result, appending to buf.
type Formatter interface {
	Format(buf []byte, res walker.Result) []byte
}

// TextFormatter produces the classic du line: size, tab, path.
type TextFormatter struct {
	bytes  bool // raw byte counts instead of human units
	styles Styles
}

// NewTextFormatter creates a TextFormatter.
func NewTextFormatter(bytes bool, styles Styles) *TextFormatter {
	return &TextFormatter{bytes: bytes, styles: styles}
}

func (f *TextFormatter) Format(buf []byte, res walker.Result) []byte {
	var size string
	if f.bytes {
		size = strconv.FormatInt(BlocksToBytes(res.Blocks), 10)
	} else {
		size = FormatBlocks(res.Blocks)
	}
	buf = append(buf, f.styles.Size.Render(size)...)
	buf = append(buf, '\t')
	buf = append(buf, f.styles.Path.Render(res.Root)...)
	buf = append(buf, '\n')
	return buf
}
