package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type auditReader interface {
	ListAuditLogs(ctx context.Context, page, pageSize int) ([]models.AuditLog, int, error)
}

// AuditService exposes the admin action trail.
type AuditService struct {
	repo   auditReader
	logger *zap.Logger
}

// NewAuditService instantiates AuditService.
func NewAuditService(repo auditReader, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// List returns the newest audit entries first.
func (s *AuditService) List(ctx context.Context, page, pageSize int) ([]models.AuditLog, *models.Pagination, error) {
	logs, total, err := s.repo.ListAuditLogs(ctx, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return logs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
