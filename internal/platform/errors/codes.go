// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeBattleInvalidRequest Code = "BATTLE_INVALID_REQUEST"

	// Storage errors
	CodeBattleNotFound       Code = "BATTLE_NOT_FOUND"
	CodeBattleAlreadyExists  Code = "BATTLE_ALREADY_EXISTS"
	CodeBattleJournalCorrupt Code = "BATTLE_JOURNAL_CORRUPT"

	// Rules errors
	CodeBattleUnknownLocation     Code = "BATTLE_UNKNOWN_LOCATION"
	CodeBattleUnknownHex          Code = "BATTLE_UNKNOWN_HEX"
	CodeBattleUnknownCreatureKind Code = "BATTLE_UNKNOWN_CREATURE_KIND"
	CodeBattlePreconditionFailed  Code = "BATTLE_PRECONDITION_FAILED"

	// Dice errors
	CodeDiceInvalidCount Code = "DICE_INVALID_COUNT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeBattleInvalidRequest,
		CodeBattleUnknownLocation,
		CodeBattleUnknownHex,
		CodeBattleUnknownCreatureKind,
		CodeDiceInvalidCount:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeBattlePreconditionFailed:
		return codes.FailedPrecondition

	case CodeBattleNotFound:
		return codes.NotFound

	case CodeBattleAlreadyExists:
		return codes.AlreadyExists

	// DataLoss - the stored journal no longer replays
	case CodeBattleJournalCorrupt:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
