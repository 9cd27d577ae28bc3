package signal

import (
	"errors"

	"github.com/havenapp/haven/internal/app"
	"github.com/havenapp/haven/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) handleJoin(connID core.ConnID, c *wsConn, data []byte) {
	p, err := parseJoinRoom(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("room", string(p.RoomID)).Str("user", string(p.UserID)).Msg("join")
	if err := ctl.Relay.Join(connID, p.RoomID, p.UserID, p.DisplayName); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("join dropped")
	}
}

func (ctl *Controller) handleLeave(connID core.ConnID, c *wsConn, data []byte) {
	p, err := parseLeaveRoom(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad leave payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("room", string(p.RoomID)).Msg("leave")
	ctl.Relay.Leave(connID, p.RoomID)
}

func (ctl *Controller) handleSpeaking(connID core.ConnID, c *wsConn, data []byte) {
	p, err := parseSpeakingChange(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad speaking payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	// Stale speaking events after a leave are a silent no-op downstream.
	ctl.Relay.SetSpeaking(connID, p.RoomID, *p.Speaking)
}

func (ctl *Controller) handleWhisper(connID core.ConnID, c *wsConn, data []byte) {
	p, err := parseSendWhisper(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad whisper payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if _, err := ctl.Relay.Whisper(connID, p.ReceiverID, p.Payload, p.Kind, p.SharedRoomID); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("whisper dropped")
		if errors.Is(err, app.ErrUnidentified) {
			ctl.sendError(c, "unidentified")
		}
	}
}
