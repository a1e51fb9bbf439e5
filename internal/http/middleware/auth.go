// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the calling user and their capabilities. The host
// platform mints HS256 tokens:
//
//	{
//	  "sub": "42",
//	  "caps": ["issuebadge:view"],
//	  "course_caps": {"10": ["issuebadge:issue", "issuebadge:manage"]},
//	  "exp": 1767225600
//	}
//
// Site-level capabilities ("caps") apply in every course. Course-level
// capabilities apply only in the course they are listed under.
//
// Without a secret the middleware runs in development mode and trusts the
// X-User-ID and X-Capabilities headers instead. X-Capabilities is a comma list
// where "cap" is site-wide and "cap@10" is scoped to course 10.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Capability names a permission checked by the API.
type Capability string

const (
	CapView    Capability = "issuebadge:view"
	CapIssue   Capability = "issuebadge:issue"
	CapManage  Capability = "issuebadge:manage"
	CapNotify  Capability = "issuebadge:notify"
	CapPrivacy Capability = "issuebadge:privacy"
)

const (
	principalKey = "principal"

	HeaderUserID       = "X-User-ID"
	HeaderCapabilities = "X-Capabilities"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID int64
	site   map[Capability]struct{}
	course map[int64]map[Capability]struct{}
}

// NewPrincipal builds a principal from site and per-course capability lists.
func NewPrincipal(userID int64, site []string, course map[int64][]string) *Principal {
	p := &Principal{
		UserID: userID,
		site:   make(map[Capability]struct{}, len(site)),
		course: make(map[int64]map[Capability]struct{}, len(course)),
	}
	for _, c := range site {
		if c = strings.TrimSpace(c); c != "" {
			p.site[Capability(c)] = struct{}{}
		}
	}
	for id, caps := range course {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			if c = strings.TrimSpace(c); c != "" {
				set[Capability(c)] = struct{}{}
			}
		}
		p.course[id] = set
	}
	return p
}

// Can reports whether the principal holds capability in courseID. A courseID
// of 0 asks for the site-level capability.
func (p *Principal) Can(capability Capability, courseID int64) bool {
	if p == nil {
		return false
	}
	if _, ok := p.site[capability]; ok {
		return true
	}
	if courseID <= 0 {
		return false
	}
	_, ok := p.course[courseID][capability]
	return ok
}

// Claims is the token payload.
type Claims struct {
	Caps       []string            `json:"caps,omitempty"`
	CourseCaps map[string][]string `json:"course_caps,omitempty"`
	jwt.RegisteredClaims
}

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Secret is the HS256 key. Empty enables development header mode.
	Secret string
	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

var errNoCredentials = errors.New("missing credentials")

// Authenticate attaches the caller's Principal or aborts with 401.
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	secret := []byte(opts.Secret)
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		var (
			p   *Principal
			err error
		)
		if len(secret) == 0 {
			p, err = principalFromHeaders(c.Request.Header)
		} else {
			p, err = principalFromToken(parser, secret, c.GetHeader("Authorization"))
		}
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(RequestIDFrom(c), "unauthorized", "authentication required"))
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// SignToken mints an HS256 token carrying claims. Used by the CLI and tests.
func SignToken(secret string, claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

func principalFromToken(parser *jwt.Parser, secret []byte, header string) (*Principal, error) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return nil, errNoCredentials
	}
	var claims Claims
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	course := make(map[int64][]string, len(claims.CourseCaps))
	for k, caps := range claims.CourseCaps {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid course id %q in course_caps", k)
		}
		course[id] = caps
	}
	return NewPrincipal(uid, claims.Caps, course), nil
}

func principalFromHeaders(h http.Header) (*Principal, error) {
	raw := strings.TrimSpace(h.Get(HeaderUserID))
	if raw == "" {
		return nil, errNoCredentials
	}
	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || uid <= 0 {
		return nil, fmt.Errorf("invalid %s %q", HeaderUserID, raw)
	}
	var site []string
	course := map[int64][]string{}
	for _, item := range strings.Split(h.Get(HeaderCapabilities), ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		capName, scope, scoped := strings.Cut(item, "@")
		if !scoped {
			site = append(site, capName)
			continue
		}
		id, err := strconv.ParseInt(scope, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid capability scope %q", item)
		}
		course[id] = append(course[id], capName)
	}
	return NewPrincipal(uid, site, course), nil
}

// PrincipalFrom returns the principal attached by Authenticate.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

// Require aborts with 403 unless the principal holds capability in the
// course returned by scope (nil scope means site level). scope may abort the
// request itself, e.g. on a malformed course id.
func Require(capability Capability, scope func(*gin.Context) (int64, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var course int64
		if scope != nil {
			id, ok := scope(c)
			if !ok {
				if !c.IsAborted() {
					c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(RequestIDFrom(c), "bad_request", "invalid scope"))
				}
				return
			}
			course = id
		}
		p, _ := PrincipalFrom(c)
		if !p.Can(capability, course) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody(RequestIDFrom(c), "forbidden", "missing capability "+string(capability)))
			return
		}
		c.Next()
	}
}
