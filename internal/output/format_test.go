package output

import (
	"testing"

	"github.com/dl/godu/internal/walker"
)

func TestFormatBlocks(t *testing.T) {
	tests := []struct {
		blocks int64
		want   string
	}{
		{0, "0B"},
		{1, "512B"},
		{2, "1K"},             // 1024 bytes, integral
		{3, "1.5K"},           // 1536 bytes
		{2047, "1023.5K"},     // just under a MiB
		{2048, "1M"},          // exactly 1 MiB
		{3072, "1.5M"},        // 1.5 MiB
		{2 << 20, "1G"},       // 2^21 blocks = 1 GiB
		{3 << 20, "1.5G"},     // 1.5 GiB
		{2 << 30, "1T"},       // 2^31 blocks = 1 TiB
		{5 << 30, "2.5T"},     // 2.5 TiB
	}
	for _, tt := range tests {
		if got := FormatBlocks(tt.blocks); got != tt.want {
			t.Errorf("FormatBlocks(%d) = %q, want %q", tt.blocks, got, tt.want)
		}
	}
}

func TestBlocksToBytes(t *testing.T) {
	if got := BlocksToBytes(3); got != 1536 {
		t.Errorf("BlocksToBytes(3) = %d, want 1536", got)
	}
}

func TestTextFormatter(t *testing.T) {
	res := walker.Result{Root: "/srv/data", Blocks: 3}

	human := NewTextFormatter(false, NoStyles())
	if got := string(human.Format(nil, res)); got != "1.5K\t/srv/data\n" {
		t.Errorf("human line = %q", got)
	}

	raw := NewTextFormatter(true, NoStyles())
	if got := string(raw.Format(nil, res)); got != "1536\t/srv/data\n" {
		t.Errorf("bytes line = %q", got)
	}
}

func TestTextFormatterReusesBuffer(t *testing.T) {
	f := NewTextFormatter(false, NoStyles())
	buf := f.Format(nil, walker.Result{Root: "/a", Blocks: 2})
	buf = f.Format(buf[:0], walker.Result{Root: "/b", Blocks: 2})
	if string(buf) != "1K\t/b\n" {
		t.Errorf("reused buffer = %q", string(buf))
	}
}
