package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uponor_bridge/internal/logger"
)

var errEmptyVariableName = errors.New("variable name is required")

// ControlService performs single-variable writes against the controller.
// It shares the protocol client, and its connection lifecycle, with the
// coordinator.
type ControlService struct {
	client JNAPClient
	log    *logger.Logger
}

func NewControlService(client JNAPClient, log *logger.Logger) *ControlService {
	return &ControlService{client: client, log: log}
}

// SetVariable writes one raw variable. The value is sent as the wire
// string; the controller interprets it by variable type.
func (s *ControlService) SetVariable(ctx context.Context, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errEmptyVariableName
	}

	if err := s.client.SetAttribute(ctx, name, value); err != nil {
		if s.log != nil {
			s.log.Errorw("set_variable_failed", "name", name, "err", err)
		}
		return fmt.Errorf("set %s: %w", name, err)
	}

	if s.log != nil {
		s.log.Infow("set_variable", "name", name, "value", value)
	}
	return nil
}
