package sim

import (
	"fmt"

	"miniball/internal/geom"
)

// PlayerPhase is the per-player sub-state: picking a team, committed and
// waiting for a spawn window, or on the pitch.
type PlayerPhase uint8

const (
	PlayerPhaseSelectTeam PlayerPhase = iota
	PlayerPhaseCommittedToTeam
	PlayerPhasePlaying
)

// Player is the logical entity owned by exactly one participant. Players
// live densely packed in Game.Players[:PlayerCount]; removal swaps the
// last player into the hole and repairs both back-pointers.
type Player struct {
	PreferredTeamID            uint8 // 0, 1, or NoIndex
	ControllingAvatarIndex     uint8 // avatar index or NoIndex
	AssignedToParticipantIndex uint8
	LastInput                  PlayerInput
	Phase                      PlayerPhase
	IsWaitingForReconnect      bool
}

func (g *Game) spawnPlayer(participant *Participant) {
	if g.PlayerCount >= MaxPlayers {
		panic(fmt.Sprintf("sim: player capacity %d exhausted (host must admission-control)", MaxPlayers))
	}
	playerIndex := g.PlayerCount
	g.PlayerCount++

	g.Players[playerIndex] = Player{
		PreferredTeamID:            NoIndex,
		ControllingAvatarIndex:     NoIndex,
		AssignedToParticipantIndex: participant.ParticipantID,
		Phase:                      PlayerPhaseSelectTeam,
	}
	participant.PlayerIndex = playerIndex
}

// removePlayer swaps the last player into the removed slot and repairs the
// moved player's participant entry and avatar back-pointer.
func (g *Game) removePlayer(indexToRemove uint8) {
	g.PlayerCount--
	g.Players[indexToRemove] = g.Players[g.PlayerCount]

	moved := &g.Players[indexToRemove]
	g.ParticipantLookup[moved.AssignedToParticipantIndex].PlayerIndex = indexToRemove
	if moved.ControllingAvatarIndex != NoIndex {
		g.Avatars[moved.ControllingAvatarIndex].ControlledByPlayerIndex = indexToRemove
	}
}

// projectInputs maps every player's last input onto its avatar's request
// fields, or handles team selection and reconnect signalling. Anomalous
// inputs (a select from a player past team selection, in-game input with
// no avatar) are absorbed without effect.
func (g *Game) projectInputs() {
	for i := uint8(0); i < g.PlayerCount; i++ {
		player := &g.Players[i]
		switch player.LastInput.Kind {
		case InputInGame:
			player.IsWaitingForReconnect = false
			if player.ControllingAvatarIndex == NoIndex {
				continue
			}
			avatar := &g.Avatars[player.ControllingAvatarIndex]
			in := &player.LastInput
			avatar.RequestedVelocity = geom.Scale(geom.Vec2{float32(in.HorizontalAxis), float32(in.VerticalAxis)}, requestedVelocityScale)
			avatar.RequestBuildKickPower = in.Buttons&ButtonBuildKickPower != 0
			avatar.RequestSlideTackle = in.Buttons&ButtonSlideTackle != 0

		case InputSelectTeam:
			if player.Phase != PlayerPhaseSelectTeam {
				continue
			}
			player.PreferredTeamID = player.LastInput.PreferredTeamToJoin
			player.Phase = PlayerPhaseCommittedToTeam
			lateJoinWindow := g.Phase == PhaseCountDown || g.Phase == PhaseAfterAGoal
			if lateJoinWindow && player.PreferredTeamID < MaxTeams {
				g.spawnAvatarForPlayer(i)
				player.Phase = PlayerPhasePlaying
			}

		case InputWaitingForReconnect:
			player.IsWaitingForReconnect = true

		case InputForced, InputNone:
			// Nothing to project.
		}
	}
}
