package export

import (
	"bytes"
	"context"
	"testing"
)

func TestXLSXRenderer_MaxBytesLimit(t *testing.T) {
	buf := &bytes.Buffer{}
	_, err := XLSXRenderer{}.Render(context.Background(), Schema{Columns: []Column{{Name: "id"}}}, &stubIterator{rows: []Row{{"1"}}}, buf, RenderOptions{
		XLSX: XLSXOptions{MaxBytes: 1},
	})
	if err == nil {
		t.Fatalf("expected max bytes error")
	}
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation kind, got %q", KindFromError(err))
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written past the limit, got %d bytes", buf.Len())
	}

	if mapped := AsGoError(err); mapped == nil || mapped.TextCode != "validation" {
		t.Fatalf("expected a validation go-errors error")
	}
}

func TestLimitedWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	lw := newLimitedWriter(buf, 4)
	if _, err := lw.Write([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := lw.Write([]byte("de")); err == nil {
		t.Fatalf("expected the limit to reject the second write")
	}
	if buf.String() != "abc" || lw.count != 3 {
		t.Fatalf("unexpected writer state %q/%d", buf.String(), lw.count)
	}

	unlimited := newLimitedWriter(&bytes.Buffer{}, 0)
	if _, err := unlimited.Write(bytes.Repeat([]byte("x"), 1024)); err != nil {
		t.Fatalf("expected no limit when zero: %v", err)
	}
}
