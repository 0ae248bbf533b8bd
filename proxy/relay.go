package proxy

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Hop-by-hop headers describe the upstream connection, not the payload, and
// must not be relayed.
var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// copyHeaders relays every upstream response header except the hop-by-hop
// set, so ETag, Last-Modified, Cache-Control and the range headers all reach
// the client unchanged.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if hopByHopHeaders[name] {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

// Relay forwards stream requests to the film api with the caller's bearer
// token attached, and pipes the response back without buffering. It never
// inspects or rewrites bodies.
type Relay struct {
	upstream string
	client   *http.Client
}

// NewRelay builds a relay against the given upstream base URL. The client is
// deliberately left without a timeout: large film transfers run long.
func NewRelay(upstream string, client *http.Client) *Relay {
	if client == nil {
		client = &http.Client{}
	}
	return &Relay{upstream: upstream, client: client}
}

func (p *Relay) Register(r *gin.Engine) {
	r.GET("/api/film-stream", p.FilmStream)
	r.GET("/api/clip-stream", p.ClipStream)
}

func (p *Relay) FilmStream(c *gin.Context) {
	team := c.Query("team")
	upload := c.Query("upload")
	token := c.Query("token")
	if team == "" || upload == "" || token == "" {
		c.String(http.StatusBadRequest, "Missing params")
		return
	}
	p.relay(c, p.upstream+"/api/v1/teams/"+team+"/film/"+upload+"/stream", token)
}

func (p *Relay) ClipStream(c *gin.Context) {
	team := c.Query("team")
	clip := c.Query("clip")
	token := c.Query("token")
	if team == "" || clip == "" || token == "" {
		c.String(http.StatusBadRequest, "Missing params")
		return
	}
	p.relay(c, p.upstream+"/api/v1/teams/"+team+"/clips/"+clip+"/stream", token)
}

func (p *Relay) relay(c *gin.Context, url, token string) {
	ctx := c.Request.Context()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.String(http.StatusInternalServerError, "bad upstream url")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Cache-Control", "no-store")
	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("url", url).Msg("upstream request failed")
		c.String(http.StatusBadGateway, "upstream unreachable")
		return
	}
	defer resp.Body.Close()

	copyHeaders(c.Writer.Header(), resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Upstream-reported failures pass through verbatim so the caller sees
		// the real cause.
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			zerolog.Ctx(ctx).Error().Err(readErr).Msg("failed to read upstream error body")
		}
		c.Data(resp.StatusCode, "text/plain; charset=utf-8", body)
		return
	}

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("stream relay ended early")
	}
}
