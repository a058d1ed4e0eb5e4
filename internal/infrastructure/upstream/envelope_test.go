package upstream

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
	}{
		{
			name: "string flag relayed", status: 200, contentType: "application/json",
			body: `{"error":"0","data":[1,2],"total":2}`,
			want: `{"error":"0","data":[1,2],"total":2}`,
		},
		{
			name: "numeric flag coerced", status: 200, contentType: "application/json",
			body: `{"error":1,"message":"Sai mật khẩu"}`,
			want: `{"error":"1","message":"Sai mật khẩu"}`,
		},
		{
			name: "boolean flag coerced", status: 200, contentType: "application/json",
			body: `{"error":false}`,
			want: `{"error":"0"}`,
		},
		{
			name: "descriptive error string becomes message", status: 400, contentType: "application/json",
			body: `{"error":"Đơn hàng không tồn tại"}`,
			want: `{"error":"1","message":"Đơn hàng không tồn tại"}`,
		},
		{
			name: "null flag follows status", status: 500, contentType: "application/json",
			body: `{"error":null}`,
			want: `{"error":"1"}`,
		},
		{
			name: "array wrapped as data", status: 200, contentType: "application/json",
			body: `[{"id":"A"}]`,
			want: `{"error":"0","data":[{"id":"A"}]}`,
		},
		{
			name: "object without flag wrapped as data", status: 404, contentType: "application/json",
			body: `{"detail":"missing"}`,
			want: `{"error":"1","data":{"detail":"missing"}}`,
		},
		{
			name: "plain text success", status: 200, contentType: "text/plain",
			body: "Accepted",
			want: `{"error":"0","message":"Accepted"}`,
		},
		{
			name: "plain text failure keeps text", status: 502, contentType: "text/html",
			body: "Bad Gateway from nginx",
			want: `{"error":"1","message":"Bad Gateway from nginx"}`,
		},
		{
			name: "empty body uses status text", status: 503, contentType: "",
			body: "",
			want: `{"error":"1","message":"Service Unavailable"}`,
		},
		{
			name: "truncated json treated as text", status: 200, contentType: "application/json",
			body: `{"error":"0",`,
			want: `{"error":"0","message":"{\"error\":\"0\","}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Normalize(tt.status, tt.contentType, []byte(tt.body))
			data, err := json.Marshal(env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestNormalize_Image(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

	env := Normalize(http.StatusOK, "image/png", png)

	assert.True(t, env.IsSuccess())
	data, ok := env.Data().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["isImage"])
	assert.Equal(t, "image/png", data["contentType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(png), data["imageBase64"])
}

func TestIsBinary(t *testing.T) {
	assert.True(t, IsBinary("image/jpeg"))
	assert.True(t, IsBinary("IMAGE/PNG; charset=binary"))
	assert.True(t, IsBinary("application/octet-stream"))
	assert.False(t, IsBinary("application/json; charset=utf-8"))
	assert.False(t, IsBinary(""))
}

func TestEnvelope_Accessors(t *testing.T) {
	env := NewEnvelope(FlagFail, "Thiếu orderId")
	assert.False(t, env.IsSuccess())
	assert.Equal(t, "1", env.ErrorFlag())
	assert.Equal(t, "Thiếu orderId", env.Message())
	assert.Nil(t, env.Data())

	assert.Equal(t, "1", Envelope{}.ErrorFlag(), "missing flag is a failure")
}

func TestResult(t *testing.T) {
	res := &Result{StatusCode: 201, Body: []byte(`{"error":"0","data":{"count":3}}`)}
	assert.True(t, res.OK())

	var parsed struct {
		Data struct {
			Count json.Number `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, res.Decode(&parsed))
	assert.Equal(t, "3", parsed.Data.Count.String())

	assert.False(t, (&Result{StatusCode: 302}).OK())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def", BearerToken("Bearer abc.def"))
	assert.Equal(t, "abc.def", BearerToken("bearer   abc.def "))
	assert.Equal(t, "raw", BearerToken("raw"))
	assert.Equal(t, "", BearerToken(""))
}
