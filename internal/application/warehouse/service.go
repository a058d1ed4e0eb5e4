package warehouse

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/heoquay/backend/internal/domain/shared"
	domain "github.com/heoquay/backend/internal/domain/warehouse"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// ErrMissingKey is returned when an update or delete names no item
var ErrMissingKey = shared.InvalidInput("Thiếu id hoặc maNvl")

// Upstream is the part of the webhook client the warehouse service uses
type Upstream interface {
	Get(ctx context.Context, endpoint string, query url.Values) (*upstream.Result, error)
	Post(ctx context.Context, endpoint string, body any) (*upstream.Result, error)
}

// Mutation is the outcome of a create or update: the record that was sent
// and the upstream answer to relay
type Mutation struct {
	Item     ItemResponse
	Upstream *upstream.Result
}

// Service handles warehouse items. Items live upstream; the service only
// keeps tonKho consistent with its inputs.
type Service struct {
	upstream Upstream
}

// NewService creates a warehouse service
func NewService(up Upstream) *Service {
	return &Service{upstream: up}
}

// List fetches every item with tonKho recomputed
func (s *Service) List(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out, nil
}

// Create assigns an id, derives tonKho and forwards the record
func (s *Service) Create(ctx context.Context, in CreateInput) (*Mutation, error) {
	item, err := domain.NewItem(in.MaNvl, in.TenNvl, in.DonViTinh, in.TonDau, in.Nhap, in.Xuat)
	if err != nil {
		return nil, err
	}
	record := ToItemResponse(*item)
	res, err := s.upstream.Post(ctx, config.EndpointWarehouseNew, record)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Warehouse item created", zap.String("ma_nvl", record.MaNvl), zap.String("id", record.ID))
	return &Mutation{Item: record, Upstream: res}, nil
}

// Update fetches the current record, merges the sent fields and forwards the
// full record. Changing maNvl of an item found by id is rejected.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Mutation, error) {
	id := strings.TrimSpace(in.ID)
	code := ""
	if in.MaNvl != nil {
		code = strings.TrimSpace(*in.MaNvl)
	}
	if id == "" && code == "" {
		return nil, ErrMissingKey
	}

	items, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	current := find(items, id, code)
	if current == nil {
		return nil, shared.NotFound(fmt.Sprintf("Không tìm thấy NVL %s", firstNonEmpty(id, code)))
	}

	patch := domain.Patch{
		Name:     in.TenNvl,
		Unit:     in.DonViTinh,
		Opening:  in.TonDau,
		Received: in.Nhap,
		Issued:   in.Xuat,
	}
	if id != "" {
		patch.Code = in.MaNvl
	}
	if err := current.Apply(patch); err != nil {
		return nil, err
	}

	record := ToItemResponse(*current)
	res, err := s.upstream.Post(ctx, config.EndpointWarehouseEdit, record)
	if err != nil {
		return nil, err
	}
	return &Mutation{Item: record, Upstream: res}, nil
}

// Delete removes an item by maNvl. Nothing else is touched.
func (s *Service) Delete(ctx context.Context, code string) (*upstream.Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.InvalidInput("Thiếu maNvl")
	}
	return s.upstream.Post(ctx, config.EndpointWarehouseDel, map[string]any{"maNvl": code})
}

func (s *Service) fetch(ctx context.Context) ([]domain.Item, error) {
	res, err := s.upstream.Get(ctx, config.EndpointWarehouse, nil)
	if err != nil {
		return nil, err
	}
	if err := upstream.Reject(res); err != nil {
		return nil, err
	}
	raw, err := upstream.ExtractList(res, listKeys...)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			items = append(items, FromUpstream(m))
		}
	}
	return items, nil
}

// find prefers the id; the code is used when no id was sent
func find(items []domain.Item, id, code string) *domain.Item {
	for i := range items {
		if id != "" && items[i].ID == id {
			return &items[i]
		}
		if id == "" && strings.EqualFold(items[i].Code, code) {
			return &items[i]
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
