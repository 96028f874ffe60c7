package model

// TurnStage is a phase of one player's turn
type TurnStage string

const (
	StageCapitolPlacement          TurnStage = "CapitolPlacement"
	StageTroopPlacement            TurnStage = "TroopPlacement"
	StageAttackAnnexOrPort         TurnStage = "AttackAnnexOrPort"
	StageTroopMovement             TurnStage = "TroopMovement"
	StageTroopMovementFromSelected TurnStage = "TroopMovementFromSelected"
	StageGameOver                  TurnStage = "GameOver"
)

// Valid reports whether s is one of the enumerated stages. Legal
// transitions between stages are the rule engine's concern; persistence
// only guards membership in the set.
func (s TurnStage) Valid() bool {
	switch s {
	case StageCapitolPlacement,
		StageTroopPlacement,
		StageAttackAnnexOrPort,
		StageTroopMovement,
		StageTroopMovementFromSelected,
		StageGameOver:
		return true
	}
	return false
}

// TurnState is whose turn it is and where in the turn they are.
// FromCountry and TroopCount are only meaningful for the troop-movement
// stages.
type TurnState struct {
	CurrentPlayerID PlayerID  `json:"playerId"`
	Stage           TurnStage `json:"playerTurnStage"`
	FromCountry     string    `json:"fromCountryId,omitempty"`
	TroopCount      string    `json:"troopCount,omitempty"`
}
