package protocol

import (
	"fmt"

	"harmonichain/primitives"
)

func init() {
	register(OpVote, func() Operation { return &VoteOperation{} })
	register(OpContent, func() Operation { return &ContentOperation{} })
	register(OpContentUpdate, func() Operation { return &ContentUpdateOperation{} })
	register(OpContentApprove, func() Operation { return &ContentApproveOperation{} })
	register(OpContentDisable, func() Operation { return &ContentDisableOperation{} })
}

// VoteOperation casts a signed curation weight on a content row (spec
// §4.4: "weight in [-10000,10000]; num_changes <= 5").
type VoteOperation struct {
	Voter   string
	Content primitives.ObjectID
	Weight  int32
}

func (op *VoteOperation) Tag() OperationType { return OpVote }

func (op *VoteOperation) Validate() error {
	if err := validateAccountName("voter", op.Voter); err != nil {
		return err
	}
	if op.Weight < -10000 || op.Weight > 10000 {
		return fmt.Errorf("vote: weight %d outside [-10000,10000]", op.Weight)
	}
	return nil
}

func (op *VoteOperation) RequiredAuth() Requirements {
	return Requirements{Basic: []string{op.Voter}}
}

// ContentOperation registers a new music track (spec §3's Content entity).
type ContentOperation struct {
	Uploader          string
	URL               string
	Album             string
	Track             string
	HasComposition    bool
	CompositionAlbum  string
	CompositionTrack  string
	DistributionMaster []BasisPointShare
	DistributionComp   []BasisPointShare
	ManagementMaster    []PercentageShare
	ManagementComp      []PercentageShare
	PlayingRewardBp     uint32
	PublishersShareBp   uint32
	AllowVotes          bool
}

func (op *ContentOperation) Tag() OperationType { return OpContent }

func (op *ContentOperation) Validate() error {
	if err := validateAccountName("uploader", op.Uploader); err != nil {
		return err
	}
	if err := validateContentURL("url", op.URL); err != nil {
		return err
	}
	if op.Album == "" && op.Track == "" {
		return fmt.Errorf("content: album or track must be set")
	}
	if err := validateBasisPointSplit("distribution_master", op.DistributionMaster); err != nil {
		return err
	}
	if err := validatePercentageSplit("management_master", op.ManagementMaster); err != nil {
		return err
	}
	if op.HasComposition {
		if err := validateBasisPointSplit("distribution_comp", op.DistributionComp); err != nil {
			return err
		}
		if err := validatePercentageSplit("management_comp", op.ManagementComp); err != nil {
			return err
		}
	} else if len(op.DistributionComp) != 0 || len(op.ManagementComp) != 0 {
		return fmt.Errorf("content: composition fields set without has_composition")
	}
	if op.PlayingRewardBp >= 10000 {
		return fmt.Errorf("content: playing_reward_bp must be below 10000")
	}
	if op.PublishersShareBp >= 10000 {
		return fmt.Errorf("content: publishers_share_bp must be below 10000")
	}
	return nil
}

func (op *ContentOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Uploader}}
}

// ContentUpdateOperation edits an existing content row. Master metadata may
// only be changed by master-side managers; composition metadata only by
// composition-side managers (spec §4.4) — enforced here by splitting
// RequiredAuth across MasterContent and CompContent, and in the evaluator
// by rejecting edits to fields the signer isn't authorized for.
type ContentUpdateOperation struct {
	Content            primitives.ObjectID
	Editor             string
	URL                string
	Album              string
	Track              string
	CompositionAlbum   string
	CompositionTrack   string
	DistributionMaster []BasisPointShare
	DistributionComp   []BasisPointShare
	ManagementMaster   []PercentageShare
	ManagementComp     []PercentageShare
}

func (op *ContentUpdateOperation) Tag() OperationType { return OpContentUpdate }

func (op *ContentUpdateOperation) Validate() error {
	if err := validateAccountName("editor", op.Editor); err != nil {
		return err
	}
	if op.URL != "" {
		if err := validateContentURL("url", op.URL); err != nil {
			return err
		}
	}
	if len(op.DistributionMaster) > 0 {
		if err := validateBasisPointSplit("distribution_master", op.DistributionMaster); err != nil {
			return err
		}
	}
	if len(op.ManagementMaster) > 0 {
		if err := validatePercentageSplit("management_master", op.ManagementMaster); err != nil {
			return err
		}
	}
	if len(op.DistributionComp) > 0 {
		if err := validateBasisPointSplit("distribution_comp", op.DistributionComp); err != nil {
			return err
		}
	}
	if len(op.ManagementComp) > 0 {
		if err := validatePercentageSplit("management_comp", op.ManagementComp); err != nil {
			return err
		}
	}
	return nil
}

func (op *ContentUpdateOperation) RequiredAuth() Requirements {
	touchesMaster := op.Album != "" || op.Track != "" || len(op.DistributionMaster) > 0 || len(op.ManagementMaster) > 0
	touchesComp := op.CompositionAlbum != "" || op.CompositionTrack != "" || len(op.DistributionComp) > 0 || len(op.ManagementComp) > 0
	req := Requirements{}
	if touchesMaster {
		req.MasterContent = []string{op.Editor}
	}
	if touchesComp {
		req.CompContent = []string{op.Editor}
	}
	if !touchesMaster && !touchesComp {
		req.Active = []string{op.Editor}
	}
	return req
}

// ContentApproveOperation records a management-side signoff on a content
// row. Reward accrual and payouts do not consult the recorded approvals.
type ContentApproveOperation struct {
	Content  primitives.ObjectID
	Approver string
	Approve  bool
}

func (op *ContentApproveOperation) Tag() OperationType { return OpContentApprove }

func (op *ContentApproveOperation) Validate() error {
	return validateAccountName("approver", op.Approver)
}

func (op *ContentApproveOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Approver}}
}

// ContentDisableOperation retires a content row from future reward accrual
// and voting (spec §3's disabled flag).
type ContentDisableOperation struct {
	Content primitives.ObjectID
	Editor  string
}

func (op *ContentDisableOperation) Tag() OperationType { return OpContentDisable }

func (op *ContentDisableOperation) Validate() error {
	return validateAccountName("editor", op.Editor)
}

func (op *ContentDisableOperation) RequiredAuth() Requirements {
	return Requirements{MasterContent: []string{op.Editor}}
}
