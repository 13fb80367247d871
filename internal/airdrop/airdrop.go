// Package airdrop claims session rewards from the token airdrop service.
package airdrop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Cooldown is the minimum time between successful claims.
const Cooldown = 9 * time.Second

var (
	ErrCooldown       = errors.New("airdrop: claimed too recently")
	ErrInFlight       = errors.New("airdrop: claim already in progress")
	ErrInvalidAddress = errors.New("airdrop: invalid wallet address")
	ErrRejected       = errors.New("airdrop: transfer rejected")
	ErrNothingToClaim = errors.New("airdrop: nothing to claim")
)

type request struct {
	Recipients []string `json:"recipients"`
	Amounts    []string `json:"amounts"`
}

type response struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	Message         string `json:"message"`
}

// Result describes a completed transfer.
type Result struct {
	Address         string
	Amount          float64
	TransactionHash string
}

// Client posts claims to one service endpoint. Only one claim runs at a time.
type Client struct {
	url    string
	http   *http.Client
	logger *log.Logger
	now    func() time.Time

	mu          sync.Mutex
	inFlight    bool
	lastSuccess time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l *log.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: log.Default().WithPrefix("airdrop"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claim transfers amount tokens to address.
func (c *Client) Claim(ctx context.Context, address string, amount float64) (Result, error) {
	if !IsAddress(address) {
		return Result{}, ErrInvalidAddress
	}
	if amount <= 0 {
		return Result{}, ErrNothingToClaim
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Result{}, ErrInFlight
	}
	if !c.lastSuccess.IsZero() && c.now().Sub(c.lastSuccess) < Cooldown {
		c.mu.Unlock()
		return Result{}, ErrCooldown
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	c.logger.Info("claiming", "address", address, "amount", amount)
	res, err := c.post(ctx, address, amount)
	if err != nil {
		c.logger.Error("claim failed", "address", address, "err", err)
		return Result{}, err
	}

	c.mu.Lock()
	c.lastSuccess = c.now()
	c.mu.Unlock()
	c.logger.Info("claim succeeded", "address", address, "tx", res.TransactionHash)
	return res, nil
}

func (c *Client) post(ctx context.Context, address string, amount float64) (Result, error) {
	body, err := json.Marshal(request{
		Recipients: []string{address},
		Amounts:    []string{strconv.FormatFloat(amount, 'f', -1, 64)},
	})
	if err != nil {
		return Result{}, fmt.Errorf("airdrop: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("airdrop: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("airdrop: post: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("airdrop: read response: %w", err)
	}
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("airdrop: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !r.Success {
		msg := r.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Result{}, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return Result{Address: address, Amount: amount, TransactionHash: r.TransactionHash}, nil
}

// IsAddress reports whether s looks like an EVM wallet address.
func IsAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
