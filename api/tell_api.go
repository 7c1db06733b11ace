package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// TellAPI, tell (anonim soru) endpoint'lerinin typed interface'i.
//
// Gönderme:
//   - Create: Login'li kullanıcı olarak tell gönder (is_anonymous seçilebilir)
//   - CreatePublic: Hesapsız anonim gönderim — sender her zaman gizli
//
// Listeleme:
//   - GetInbox: Kullanıcıya gelen tell'ler (cevaplı/cevapsız hepsi)
//   - GetSent: Kullanıcının gönderdiği tell'ler
//   - GetUserTells: Bir profildeki public cevaplanmış tell'ler
//   - GetPublicFeed: Offset pagination'lı global feed — user_id verilirse
//     takip edilenlerin tell'leri öne alınır (is_from_following bayrağı)
//
// Cevap:
//   - Answer: Tell'in alıcısı cevap yazar
//   - Reply: Cevaba ek mesaj — sadece orijinal sender veya receiver yazabilir
//
// Badge:
//   - GetUnansweredCount: Henüz cevaplanmamış gelen tell sayısı
type TellAPI interface {
	Create(ctx context.Context, req *models.CreateTellRequest) (*models.Tell, error)
	CreatePublic(ctx context.Context, req *models.CreateTellRequest) (*models.Tell, error)

	GetInbox(ctx context.Context) ([]models.Tell, error)
	GetSent(ctx context.Context) ([]models.Tell, error)
	GetUserTells(ctx context.Context, username string) ([]models.Tell, error)
	GetPublicFeed(ctx context.Context, limit, offset int, userID string) ([]models.Tell, error)

	Answer(ctx context.Context, tellID string, req *models.AnswerRequest) (*models.Answer, error)
	Reply(ctx context.Context, answerID string, req *models.ReplyRequest) (*models.Reply, error)

	GetUnansweredCount(ctx context.Context) (int64, error)
}

type tellAPI struct {
	client *Client
}

// NewTellAPI, constructor.
func NewTellAPI(client *Client) TellAPI {
	return &tellAPI{client: client}
}

func (t *tellAPI) Create(ctx context.Context, req *models.CreateTellRequest) (*models.Tell, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var tell models.Tell
	if err := t.client.post(ctx, "/api/tells/", req, &tell); err != nil {
		return nil, fmt.Errorf("failed to create tell: %w", err)
	}
	return &tell, nil
}

func (t *tellAPI) CreatePublic(ctx context.Context, req *models.CreateTellRequest) (*models.Tell, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var tell models.Tell
	if err := t.client.post(ctx, "/api/public/tells", req, &tell); err != nil {
		return nil, fmt.Errorf("failed to create public tell: %w", err)
	}
	return &tell, nil
}

func (t *tellAPI) GetInbox(ctx context.Context) ([]models.Tell, error) {
	var tells []models.Tell
	if err := t.client.get(ctx, "/api/tells/", nil, &tells); err != nil {
		return nil, fmt.Errorf("failed to get inbox: %w", err)
	}
	return tells, nil
}

func (t *tellAPI) GetSent(ctx context.Context) ([]models.Tell, error) {
	var tells []models.Tell
	if err := t.client.get(ctx, "/api/tells/sent", nil, &tells); err != nil {
		return nil, fmt.Errorf("failed to get sent tells: %w", err)
	}
	return tells, nil
}

func (t *tellAPI) GetUserTells(ctx context.Context, username string) ([]models.Tell, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", pkg.ErrValidation)
	}
	var tells []models.Tell
	if err := t.client.get(ctx, "/api/public/tells/"+url.PathEscape(username), nil, &tells); err != nil {
		return nil, fmt.Errorf("failed to get tells for %s: %w", username, err)
	}
	return tells, nil
}

func (t *tellAPI) GetPublicFeed(ctx context.Context, limit, offset int, userID string) ([]models.Tell, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if userID != "" {
		q.Set("user_id", userID)
	}

	var tells []models.Tell
	if err := t.client.get(ctx, "/api/public/feed", q, &tells); err != nil {
		return nil, fmt.Errorf("failed to get public feed: %w", err)
	}
	return tells, nil
}

func (t *tellAPI) Answer(ctx context.Context, tellID string, req *models.AnswerRequest) (*models.Answer, error) {
	if tellID == "" {
		return nil, fmt.Errorf("%w: tell id is required", pkg.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var answer models.Answer
	if err := t.client.post(ctx, "/api/tells/"+url.PathEscape(tellID)+"/answer", req, &answer); err != nil {
		return nil, fmt.Errorf("failed to answer tell: %w", err)
	}
	return &answer, nil
}

func (t *tellAPI) Reply(ctx context.Context, answerID string, req *models.ReplyRequest) (*models.Reply, error) {
	if answerID == "" {
		return nil, fmt.Errorf("%w: answer id is required", pkg.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var reply models.Reply
	if err := t.client.post(ctx, "/api/tells/answers/"+url.PathEscape(answerID)+"/reply", req, &reply); err != nil {
		return nil, fmt.Errorf("failed to reply: %w", err)
	}
	return &reply, nil
}

func (t *tellAPI) GetUnansweredCount(ctx context.Context) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := t.client.get(ctx, "/api/tells/unread-count", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to get unanswered count: %w", err)
	}
	return resp.Count, nil
}
