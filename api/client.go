// Package api, pemblle backend'inin HTTP API'sine karşı typed bir client katmanıdır.
//
// Katman iki seviyeden oluşur:
//   - Client: HTTP mekaniği — request oluşturma, bearer token ekleme,
//     JSON encode/decode, status code → sentinel error eşlemesi.
//   - XxxAPI interface'leri: her endpoint grubu için typed operasyonlar
//     (AuthAPI, UserAPI, TellAPI, ChatAPI). Üst katmanlar (services, session)
//     sadece bu interface'lere bağımlıdır — test'te fake ile değiştirilebilir.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ihsandara/PemBlle/pkg"
)

// TokenFunc, her istekte çağrılarak güncel bearer token'ı döner.
// Fonksiyon olarak alınır çünkü token oturum boyunca değişebilir
// (login/logout) — Client token'ı kendisi saklamaz, session katmanı sahibidir.
type TokenFunc func() string

// Client, tüm API gruplarının paylaştığı HTTP taşıma katmanı.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
}

// NewClient, constructor.
// baseURL sondaki slash'tan arındırılır — path'ler her zaman "/" ile başlar.
func NewClient(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

// remoteError, backend'in hata gövdesi: {"error": "...", "code": "..."}.
// code alanı opsiyoneldir — şu an sadece "unverified" için kullanılır.
type remoteError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// get, GET isteği yapar. query nil olabilir.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

// post, JSON gövdeli POST isteği yapar. body nil olabilir.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

// put, JSON gövdeli PUT isteği yapar.
func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

// del, DELETE isteği yapar.
func (c *Client) del(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// upload, multipart/form-data ile dosya yükler (avatar için).
// Dosya içeriği önce buffer'a yazılır — avatar boyutları küçük olduğundan
// streaming multipart karmaşıklığına gerek yoktur.
func (c *Client) upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

// do, isteği çalıştırır ve cevabı işler.
//
// Akış:
// 1. Bearer token ekle (varsa)
// 2. İsteği gönder — transport hatası → ErrNetwork wrap
// 3. 2xx ise gövdeyi out'a decode et (out nil ise gövde atlanır)
// 4. Değilse gövdedeki hata mesajını oku ve status'a göre sentinel error'a eşle
func (c *Client) do(req *http.Request, out any) error {
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Context iptali transport hatası değildir — olduğu gibi dönmeli ki
		// çağıran errors.Is(err, context.Canceled) ile ayırt edebilsin.
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return fmt.Errorf("%w: %v", pkg.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			// Gövdeyi boşalt ki connection pool'a geri dönebilsin
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	// Hata gövdesini decode et — decode edilemezse boş mesajla devam
	var re remoteError
	_ = json.NewDecoder(resp.Body).Decode(&re)

	return mapStatusError(resp.StatusCode, re)
}

// mapStatusError, HTTP status code'u sentinel error'a eşler.
// Mesaj sentinel'in üstüne wrap edilir, böylece hem errors.Is() ile
// programatik kontrol hem de kullanıcıya gösterilecek detay korunur.
func mapStatusError(status int, re remoteError) error {
	var sentinel error
	switch {
	case status == http.StatusUnauthorized:
		sentinel = pkg.ErrUnauthorized
	case status == http.StatusForbidden && re.Code == "unverified":
		sentinel = pkg.ErrUnverifiedAccount
	case status == http.StatusForbidden:
		sentinel = pkg.ErrForbidden
	case status == http.StatusNotFound:
		sentinel = pkg.ErrNotFound
	case status >= 400 && status < 500:
		sentinel = pkg.ErrBadRequest
	default:
		sentinel = pkg.ErrInternal
	}

	if re.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, re.Error)
	}
	return fmt.Errorf("%w: HTTP %d", sentinel, status)
}
