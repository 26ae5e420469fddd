package protocol

import "testing"

// TestContentDistributionSum covers spec §8 scenario 4.
func TestContentDistributionSum(t *testing.T) {
	base := func(bobWeight uint32) *ContentOperation {
		return &ContentOperation{
			Uploader: "uploader",
			URL:      "ipfs://track",
			Album:    "album",
			DistributionMaster: []BasisPointShare{
				{Payee: "alice", Weight: 6000},
				{Payee: "bob", Weight: bobWeight},
			},
			ManagementMaster: []PercentageShare{
				{Account: "carol", Percentage: 100},
			},
		}
	}

	if err := base(4000).Validate(); err != nil {
		t.Fatalf("expected valid distribution to pass, got: %v", err)
	}
	if err := base(4001).Validate(); err == nil {
		t.Fatal("expected distribution summing to 10001 to fail validation")
	}
}

func TestContentRequiresAlbumOrTrack(t *testing.T) {
	op := &ContentOperation{
		Uploader: "uploader",
		URL:      "ipfs://track",
		DistributionMaster: []BasisPointShare{
			{Payee: "alice", Weight: 10000},
		},
		ManagementMaster: []PercentageShare{
			{Account: "carol", Percentage: 100},
		},
	}
	if err := op.Validate(); err == nil {
		t.Fatal("expected missing album/track to fail validation")
	}
}

func TestContentURLMustBeIPFS(t *testing.T) {
	op := &ContentOperation{
		Uploader: "uploader",
		URL:      "https://example.com/track",
		Album:    "album",
		DistributionMaster: []BasisPointShare{
			{Payee: "alice", Weight: 10000},
		},
		ManagementMaster: []PercentageShare{
			{Account: "carol", Percentage: 100},
		},
	}
	if err := op.Validate(); err == nil {
		t.Fatal("expected non-ipfs:// URL to fail validation")
	}
}
