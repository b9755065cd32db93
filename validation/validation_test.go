package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "empty", text: "", wantErr: true},
		{name: "single char", text: "a", wantErr: false},
		{name: "exactly max", text: strings.Repeat("a", MaxTextLen), wantErr: false},
		{name: "one over max", text: strings.Repeat("a", MaxTextLen+1), wantErr: true},
		{name: "multibyte counts runes not bytes", text: strings.Repeat("ü", MaxTextLen), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckText(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckImage(t *testing.T) {
	tests := []struct {
		name        string
		size        int64
		contentType string
		wantErr     string
	}{
		{name: "jpeg ok", size: 1024, contentType: "image/jpeg", wantErr: ""},
		{name: "png ok", size: 1024, contentType: "image/png", wantErr: ""},
		{name: "gif ok", size: 1024, contentType: "image/gif", wantErr: ""},
		{name: "webp ok", size: 1024, contentType: "image/webp", wantErr: ""},
		{name: "exactly limit ok", size: MaxImageBytes, contentType: "image/png", wantErr: ""},
		{name: "one byte over", size: MaxImageBytes + 1, contentType: "image/png", wantErr: "under 5MB"},
		{name: "unsupported type", size: 1024, contentType: "image/bmp", wantErr: "JPEG, PNG, GIF and WebP"},
		{name: "not an image", size: 1024, contentType: "text/plain", wantErr: "JPEG, PNG, GIF and WebP"},
		{name: "size check short-circuits type check", size: MaxImageBytes + 1, contentType: "text/plain", wantErr: "under 5MB"},
		{name: "type with charset suffix", size: 1024, contentType: "image/png; charset=binary", wantErr: ""},
		{name: "case insensitive type", size: 1024, contentType: "IMAGE/JPEG", wantErr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckImage(tt.size, tt.contentType)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestFieldErrorsError(t *testing.T) {
	assert.Equal(t, "", FieldErrors{}.Error())

	fe := FieldErrors{"text": "text is required", "image": "too big"}
	assert.Equal(t, "image: too big; text: text is required", fe.Error())
}
