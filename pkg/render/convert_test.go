package render

import (
	"bytes"
	"context"
	"testing"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestConvert(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	ctx := context.Background()
	pdf, err := ToPDF(ctx, []byte(square))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("PDF output starts with %q", pdf[:min(8, len(pdf))])
	}
	png, err := ToPNG(ctx, []byte(square), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("PNG output has no PNG signature")
	}
}
