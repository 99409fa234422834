package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/I7ZT1/club-manager-panel/internal/audit/domain"
	obscontext "github.com/I7ZT1/club-manager-panel/internal/observability/context"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	GenID *snowflake.Node
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

// Record stores one audit entry. Audit failures are logged, never returned:
// a broken trail must not fail the underlying action.
func (s *Service) Record(ctx context.Context, actor domain.ActorType, action, targetType, targetID string, metadata map[string]any) {
	entry := &domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  string(actor),
		Action:     action,
		TargetType: targetType,
		Metadata:   datatypes.JSONMap(metadata),
	}
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		entry.RequestID = &requestID
	}
	if customerID := obscontext.CustomerIDFromContext(ctx); customerID != "" {
		entry.ActorID = &customerID
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Error("audit insert failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// List serves the admin audit trail browser.
func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 50
	}
	return s.repo.List(ctx, s.db, req)
}
