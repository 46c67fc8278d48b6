// Package vatsim resolves VATSIM members to their connected pilot session.
package vatsim

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/plvacc/vdgs/internal/config"
	"github.com/plvacc/vdgs/internal/httpjson"
)

// ErrOffline is returned when the member has no active connection.
var ErrOffline = errors.New("member is not connected")

// A pilot counts as airborne above both thresholds.
const (
	AirborneMinAltitude    = 1000 // feet
	AirborneMinGroundspeed = 80   // knots
)

type Client struct {
	httpClient httpjson.Doer
	membersURL string
	dataURL    string
}

type ClientOption func(c *Client)

func WithHttpClient(httpClient httpjson.Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMembersURL(membersURL string) ClientOption {
	return func(c *Client) {
		c.membersURL = membersURL
	}
}

func WithDataURL(dataURL string) ClientOption {
	return func(c *Client) {
		c.dataURL = dataURL
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	c.membersURL = strings.TrimSuffix(cmp.Or(c.membersURL, config.DefaultVatsimMembersURL), "/")
	c.dataURL = strings.TrimSuffix(cmp.Or(c.dataURL, config.DefaultVatsimDataURL), "/")

	return c
}

type memberStatus struct {
	Callsign string `json:"callsign"`
}

// Pilot is the live state of a connected pilot.
type Pilot struct {
	CID         int    `json:"cid"`
	Callsign    string `json:"callsign"`
	Altitude    int    `json:"altitude"`
	Groundspeed int    `json:"groundspeed"`
}

func (p Pilot) Airborne() bool {
	return p.Altitude > AirborneMinAltitude && p.Groundspeed > AirborneMinGroundspeed
}

// Callsign returns the callsign the member is currently connected with.
func (c *Client) Callsign(ctx context.Context, cid string) (string, error) {
	status, err := httpjson.GetInto[memberStatus](ctx, c.httpClient, c.membersURL+"/"+url.PathEscape(cid)+"/status")
	var statusErr *httpjson.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		// Members without a session have no status resource
		return "", fmt.Errorf("%w: cid %s", ErrOffline, cid)
	}
	if err != nil {
		return "", err
	}

	if status.Callsign == "" {
		return "", fmt.Errorf("%w: cid %s", ErrOffline, cid)
	}

	return status.Callsign, nil
}

// Pilot returns the live pilot data of the member.
func (c *Client) Pilot(ctx context.Context, cid string) (Pilot, error) {
	return httpjson.GetInto[Pilot](ctx, c.httpClient, c.dataURL+"/pilots/"+url.PathEscape(cid))
}
