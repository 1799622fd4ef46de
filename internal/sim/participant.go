package sim

import "fmt"

// Participant is one host connection slot. The table is directly indexed:
// ParticipantID always equals the slot index. InternalMarked is transient
// scratch used only within a single reconciliation pass.
type Participant struct {
	ParticipantID  uint8
	PlayerIndex    uint8
	IsUsed         bool
	InternalMarked bool
}

// reconcileInputs diffs the incoming batch against the participant table.
// A participant seen for the first time joins and gets a player; a used
// slot absent from the batch has left and its player and avatar go away.
func (g *Game) reconcileInputs(inputs []InputWithParticipant) {
	for i := range g.ParticipantLookup {
		g.ParticipantLookup[i].InternalMarked = false
	}

	for i := range inputs {
		in := &inputs[i]
		if in.ParticipantID >= MaxParticipants {
			panic(fmt.Sprintf("sim: participant id %d outside lookup table (host contract violation)", in.ParticipantID))
		}
		participant := &g.ParticipantLookup[in.ParticipantID]
		if !participant.IsUsed {
			participant.IsUsed = true
			participant.ParticipantID = in.ParticipantID
			g.spawnPlayer(participant)
		}
		g.Players[participant.PlayerIndex].LastInput = in.Input
		participant.InternalMarked = true
	}

	for i := range g.ParticipantLookup {
		participant := &g.ParticipantLookup[i]
		if participant.IsUsed && !participant.InternalMarked {
			g.participantLeft(participant)
		}
	}

	g.LastParticipantLookupCount = uint8(len(inputs))
}

func (g *Game) participantLeft(participant *Participant) {
	player := &g.Players[participant.PlayerIndex]
	if player.ControllingAvatarIndex != NoIndex {
		g.despawnAvatar(player.ControllingAvatarIndex)
	}
	g.removePlayer(participant.PlayerIndex)
	participant.IsUsed = false
}
