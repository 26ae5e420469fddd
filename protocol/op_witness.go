package protocol

import (
	"fmt"

	"harmonichain/primitives"
)

func init() {
	register(OpWitnessUpdate, func() Operation { return &WitnessUpdateOperation{} })
	register(OpAccountWitnessVote, func() Operation { return &AccountWitnessVoteOperation{} })
	register(OpAccountWitnessProxy, func() Operation { return &AccountWitnessProxyOperation{} })
	register(OpStreamingPlatformUpdate, func() Operation { return &StreamingPlatformUpdateOperation{} })
	register(OpAccountStreamingPlatformVote, func() Operation { return &AccountStreamingPlatformVoteOperation{} })
	register(OpStreamingPlatformReport, func() Operation { return &StreamingPlatformReportOperation{} })
}

// WitnessUpdateOperation registers or updates an account as a block-
// producer candidate (spec §3's Witness entity).
type WitnessUpdateOperation struct {
	Owner    string
	URL      string
	BlockSigningKey primitives.PublicKey
	FeeVote  primitives.Amount
}

func (op *WitnessUpdateOperation) Tag() OperationType { return OpWitnessUpdate }

func (op *WitnessUpdateOperation) Validate() error {
	if err := validateAccountName("owner", op.Owner); err != nil {
		return err
	}
	if len(op.URL) > MaxURLLength {
		return fmt.Errorf("witness_update: url exceeds %d bytes", MaxURLLength)
	}
	return nil
}

func (op *WitnessUpdateOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Owner}}
}

// AccountWitnessVoteOperation casts or withdraws one of an account's up to
// 30 witness votes (spec §3 invariant 7).
type AccountWitnessVoteOperation struct {
	Account string
	Witness string
	Approve bool
}

func (op *AccountWitnessVoteOperation) Tag() OperationType { return OpAccountWitnessVote }

func (op *AccountWitnessVoteOperation) Validate() error {
	if err := validateAccountName("account", op.Account); err != nil {
		return err
	}
	return validateAccountName("witness", op.Witness)
}

func (op *AccountWitnessVoteOperation) RequiredAuth() Requirements {
	return Requirements{Basic: []string{op.Account}}
}

// AccountWitnessProxyOperation delegates witness voting power to another
// account. Setting a non-empty proxy and direct witness votes are mutually
// exclusive (spec §4.4); an empty Proxy clears the delegation.
type AccountWitnessProxyOperation struct {
	Account string
	Proxy   string
}

func (op *AccountWitnessProxyOperation) Tag() OperationType { return OpAccountWitnessProxy }

func (op *AccountWitnessProxyOperation) Validate() error {
	if err := validateAccountName("account", op.Account); err != nil {
		return err
	}
	if op.Proxy == op.Account {
		return fmt.Errorf("account_witness_proxy: account cannot proxy to itself")
	}
	if op.Proxy != "" {
		return validateAccountName("proxy", op.Proxy)
	}
	return nil
}

func (op *AccountWitnessProxyOperation) RequiredAuth() Requirements {
	return Requirements{Basic: []string{op.Account}}
}

// StreamingPlatformUpdateOperation registers or updates a streaming
// platform candidate (spec §3's Streaming platform entity).
type StreamingPlatformUpdateOperation struct {
	Owner string
	URL   string
}

func (op *StreamingPlatformUpdateOperation) Tag() OperationType { return OpStreamingPlatformUpdate }

func (op *StreamingPlatformUpdateOperation) Validate() error {
	if err := validateAccountName("owner", op.Owner); err != nil {
		return err
	}
	if len(op.URL) > MaxURLLength {
		return fmt.Errorf("streaming_platform_update: url exceeds %d bytes", MaxURLLength)
	}
	return nil
}

func (op *StreamingPlatformUpdateOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Owner}}
}

// AccountStreamingPlatformVoteOperation casts or withdraws a vote for a
// streaming platform, analogous to witness voting.
type AccountStreamingPlatformVoteOperation struct {
	Account           string
	StreamingPlatform string
	Approve           bool
}

func (op *AccountStreamingPlatformVoteOperation) Tag() OperationType {
	return OpAccountStreamingPlatformVote
}

func (op *AccountStreamingPlatformVoteOperation) Validate() error {
	if err := validateAccountName("account", op.Account); err != nil {
		return err
	}
	return validateAccountName("streaming_platform", op.StreamingPlatform)
}

func (op *AccountStreamingPlatformVoteOperation) RequiredAuth() Requirements {
	return Requirements{Basic: []string{op.Account}}
}

// StreamingPlatformReportOperation records a play of a content row, the
// input to the playing_reward split (spec §4.4, §3's Streaming report
// entity: "play time <= 3600s").
type StreamingPlatformReportOperation struct {
	StreamingPlatform string
	Consumer          string
	Content           primitives.ObjectID
	PlayTime          uint32
	PlaylistCreator   string
}

func (op *StreamingPlatformReportOperation) Tag() OperationType { return OpStreamingPlatformReport }

func (op *StreamingPlatformReportOperation) Validate() error {
	if err := validateAccountName("streaming_platform", op.StreamingPlatform); err != nil {
		return err
	}
	if err := validateAccountName("consumer", op.Consumer); err != nil {
		return err
	}
	if op.PlayTime == 0 {
		return fmt.Errorf("streaming_platform_report: play_time must be positive")
	}
	if op.PlayTime > 3600 {
		return fmt.Errorf("streaming_platform_report: play_time exceeds 3600s")
	}
	if op.PlaylistCreator != "" {
		return validateAccountName("playlist_creator", op.PlaylistCreator)
	}
	return nil
}

func (op *StreamingPlatformReportOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.StreamingPlatform}}
}
