package app

import (
	"context"
	"errors"
	"strings"

	"github.com/louisbranch/warlord/internal/core/dice"
	apperrors "github.com/louisbranch/warlord/internal/platform/errors"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
	"github.com/louisbranch/warlord/internal/services/battle/journal"
	"github.com/louisbranch/warlord/internal/services/battle/storage"
)

var codeBySentinel = []struct {
	sentinel error
	code     apperrors.Code
	// key names the metadata entry filled from the error text when the
	// caller did not provide it.
	key string
}{
	{battle.ErrPrecondition, apperrors.CodeBattlePreconditionFailed, ""},
	{masterboard.ErrUnknownLocation, apperrors.CodeBattleUnknownLocation, "Location"},
	{battleboard.ErrUnknownHex, apperrors.CodeBattleUnknownHex, "Hex"},
	{creature.ErrUnknownKind, apperrors.CodeBattleUnknownCreatureKind, "Kind"},
	{dice.ErrInvalidCount, apperrors.CodeDiceInvalidCount, ""},
	{storage.ErrNotFound, apperrors.CodeBattleNotFound, ""},
	{storage.ErrAlreadyExists, apperrors.CodeBattleAlreadyExists, ""},
	{journal.ErrCorrupt, apperrors.CodeBattleJournalCorrupt, ""},
	{journal.ErrEmpty, apperrors.CodeBattleJournalCorrupt, ""},
}

// toAppError attaches a platform error code to err. Metadata always carries
// the battle id and a Reason; callers add the lookup key that failed.
func toAppError(err error, battleID string, metadata map[string]string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	meta := map[string]string{
		"BattleID": battleID,
		"Reason":   err.Error(),
	}
	for k, v := range metadata {
		meta[k] = v
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.WrapWithMetadata(apperrors.CodeUnknown, err.Error(), meta, err)
	}
	for _, entry := range codeBySentinel {
		if !errors.Is(err, entry.sentinel) {
			continue
		}
		detail := strings.TrimPrefix(err.Error(), entry.sentinel.Error()+": ")
		meta["Reason"] = detail
		if _, ok := meta[entry.key]; entry.key != "" && !ok {
			meta[entry.key] = strings.Trim(detail, `"`)
		}
		return apperrors.WrapWithMetadata(entry.code, err.Error(), meta, err)
	}
	return apperrors.WrapWithMetadata(apperrors.CodeUnknown, err.Error(), meta, err)
}

func invalidRequest(battleID, message string) error {
	return apperrors.WithMetadata(apperrors.CodeBattleInvalidRequest, message, map[string]string{
		"BattleID": battleID,
		"Reason":   message,
	})
}
