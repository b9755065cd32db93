package forms

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitweet/validation"
)

func formContext(t *testing.T, values url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = req
	return ctx
}

func multipartContext(t *testing.T, text, filename, contentType string, payload []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text", text))

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = req
	return ctx
}

func TestTweetFormValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "valid", text: "Hello", wantErr: false},
		{name: "empty", text: "", wantErr: true},
		{name: "whitespace only trims to empty", text: "   \t ", wantErr: true},
		{name: "max length", text: strings.Repeat("x", 280), wantErr: false},
		{name: "over max", text: strings.Repeat("x", 281), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NewTweetForm()
			form.Bind(formContext(t, url.Values{"text": {tt.text}}))
			errs := form.Validate()
			if tt.wantErr {
				require.NotNil(t, errs)
				assert.Contains(t, errs, "text")
			} else {
				assert.Nil(t, errs)
			}
		})
	}
}

func TestTweetFormStripsMarkup(t *testing.T) {
	form := NewTweetForm()
	form.Bind(formContext(t, url.Values{"text": {`hi <script>alert(1)</script> there`}}))
	assert.NotContains(t, form.Text, "<script>")
	assert.Nil(t, form.Validate())
}

func TestTweetFormPreservesPlainText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "ampersands", text: "Tom & Jerry & friends"},
		{name: "angle brackets in prose", text: "I <3 Go & Gin"},
		{name: "quotes", text: `she said "hi" and 'bye'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NewTweetForm()
			form.Bind(formContext(t, url.Values{"text": {tt.text}}))
			assert.Equal(t, tt.text, form.Text, "plain text must survive binding unchanged")
			assert.Nil(t, form.Validate())
		})
	}
}

func TestTweetFormLengthCountsStoredText(t *testing.T) {
	// Characters with HTML entity forms must count as one rune each, so a
	// maximum-length text of them still validates.
	form := NewTweetForm()
	form.Bind(formContext(t, url.Values{"text": {strings.Repeat("&", validation.MaxTextLen)}}))
	assert.Len(t, []rune(form.Text), validation.MaxTextLen)
	assert.Nil(t, form.Validate())
}

func TestTweetFormValidateImage(t *testing.T) {
	t.Run("accepted type", func(t *testing.T) {
		form := NewTweetForm()
		form.Bind(multipartContext(t, "hello", "pic.png", "image/png", []byte("notarealpng")))
		require.NotNil(t, form.Image)
		assert.Nil(t, form.Validate())
	})

	t.Run("rejected type", func(t *testing.T) {
		form := NewTweetForm()
		form.Bind(multipartContext(t, "hello", "doc.pdf", "application/pdf", []byte("%PDF")))
		require.NotNil(t, form.Image)
		errs := form.Validate()
		require.NotNil(t, errs)
		assert.Contains(t, errs["image"], "JPEG, PNG, GIF and WebP")
	})

	t.Run("image optional", func(t *testing.T) {
		form := NewTweetForm()
		form.Bind(formContext(t, url.Values{"text": {"no image here"}}))
		assert.Nil(t, form.Image)
		assert.Nil(t, form.Validate())
	})

	t.Run("both fields can fail", func(t *testing.T) {
		form := NewTweetForm()
		form.Bind(multipartContext(t, "", "doc.pdf", "application/pdf", []byte("%PDF")))
		errs := form.Validate()
		require.NotNil(t, errs)
		assert.Contains(t, errs, "text")
		assert.Contains(t, errs, "image")
	})
}

func TestReplyFormSharesRules(t *testing.T) {
	form := NewReplyForm()
	form.Bind(formContext(t, url.Values{"text": {strings.Repeat("x", 281)}}))
	errs := form.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "text")
}

func TestFormSchemasDifferOnlyInMetadata(t *testing.T) {
	tweetFields := NewTweetForm().Schema()["fields"].([]gin.H)
	replyFields := NewReplyForm().Schema()["fields"].([]gin.H)

	assert.Equal(t, "What's happening? (max 280 characters)", tweetFields[0]["placeholder"])
	assert.Equal(t, "Reply to this tweet...", replyFields[0]["placeholder"])

	// Validation limits are identical for both shapes.
	assert.Equal(t, validation.MaxTextLen, tweetFields[0]["maxlength"])
	assert.Equal(t, validation.MaxTextLen, replyFields[0]["maxlength"])
	assert.Equal(t, int64(validation.MaxImageBytes), int64(tweetFields[1]["max_bytes"].(int)))
	assert.Equal(t, int64(validation.MaxImageBytes), int64(replyFields[1]["max_bytes"].(int)))
}
