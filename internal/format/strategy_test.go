package format

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func TestRegistry_PolicyFor(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		format   string
		wantName string
		srcExt   string
		wantExt  string
	}{
		{format: "jpeg", wantName: "jpeg", srcExt: ".jpeg", wantExt: ".jpeg"},
		{format: "jpg", wantName: "jpeg", srcExt: ".jpg", wantExt: ".jpg"},
		{format: "JPEG", wantName: "jpeg", srcExt: ".jpg", wantExt: ".jpg"},
		{format: "png", wantName: "png", srcExt: ".png", wantExt: ".png"},
		{format: "webp", wantName: "webp", srcExt: ".webp", wantExt: ".webp"},
		{format: "gif", wantName: "jpeg", srcExt: ".gif", wantExt: ".jpg"},
		{format: "bmp", wantName: "jpeg", srcExt: ".bmp", wantExt: ".jpg"},
		{format: "", wantName: "jpeg", srcExt: ".xyz", wantExt: ".jpg"},
	}

	for _, tc := range tests {
		t.Run("format "+tc.format, func(t *testing.T) {
			p := reg.PolicyFor(tc.format)
			assert.Equal(t, tc.wantName, p.Name)
			assert.Equal(t, tc.wantExt, p.Extension(tc.srcExt))
		})
	}
}

func TestRegistry_SelectionIsDeterministic(t *testing.T) {
	reg := NewRegistry()

	first := reg.PolicyFor("png")
	second := reg.PolicyFor("png")

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Extension(".png"), second.Extension(".png"))
}

func TestPolicies_EncodeProduceBytes(t *testing.T) {
	reg := NewRegistry()
	img := testImage()

	for _, format := range []string{"jpeg", "png", "webp", "gif"} {
		p := reg.PolicyFor(format)

		var buf bytes.Buffer
		require.NoError(t, p.Encode(&buf, img), "format %s", format)
		assert.NotZero(t, buf.Len(), "format %s", format)
	}
}
