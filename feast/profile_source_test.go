package feast

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/personakit/core"
)

type fakeClient struct {
	resp *GetOnlineFeaturesResponse
	err  error
	got  *GetOnlineFeaturesRequest
}

func (f *fakeClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestProfileSource_TasteProfile(t *testing.T) {
	client := &fakeClient{
		resp: &GetOnlineFeaturesResponse{
			FeatureVectors: []FeatureVector{{
				Values: map[string]interface{}{
					"user_taste:coffee":  0.8,
					"user_taste:tea":     int64(2), // 整型特征值统一转 float64
					"user_taste:laptops": 0.0,      // 非正权重丢弃
					"user_taste:books":   "high",   // 非数值丢弃
				},
			}},
		},
	}
	s := &ProfileSource{
		Client:   client,
		Features: []string{"user_taste:coffee", "user_taste:tea", "user_taste:laptops", "user_taste:books"},
	}

	profile, err := s.TasteProfile(context.Background(), "u1001")
	if err != nil {
		t.Fatalf("TasteProfile() error = %v", err)
	}
	if len(profile) != 2 {
		t.Fatalf("profile = %v, want coffee and tea entries", profile)
	}
	if profile["coffee"] != 0.8 {
		t.Errorf("profile[coffee] = %v, want 0.8", profile["coffee"])
	}
	if profile["tea"] != 2.0 {
		t.Errorf("profile[tea] = %v, want 2.0", profile["tea"])
	}

	if client.got.EntityRows[0]["user_id"] != "u1001" {
		t.Errorf("entity row = %v", client.got.EntityRows[0])
	}
}

func TestProfileSource_CustomEntityKey(t *testing.T) {
	client := &fakeClient{resp: &GetOnlineFeaturesResponse{}}
	s := &ProfileSource{
		Client:    client,
		Features:  []string{"user_taste:coffee"},
		EntityKey: "member_id",
	}

	if _, err := s.TasteProfile(context.Background(), "m42"); err != nil {
		t.Fatalf("TasteProfile() error = %v", err)
	}
	if client.got.EntityRows[0]["member_id"] != "m42" {
		t.Errorf("entity row = %v", client.got.EntityRows[0])
	}
}

func TestProfileSource_ClientError(t *testing.T) {
	s := &ProfileSource{
		Client:   &fakeClient{err: errors.New("connection refused")},
		Features: []string{"user_taste:coffee"},
	}

	_, err := s.TasteProfile(context.Background(), "u1")
	if !core.IsUnavailable(err) {
		t.Errorf("error = %v, want UNAVAILABLE", err)
	}
}

func TestProfileSource_Unconfigured(t *testing.T) {
	s := &ProfileSource{}
	profile, err := s.TasteProfile(context.Background(), "u1")
	if err != nil || profile != nil {
		t.Errorf("unconfigured source: profile = %v, err = %v", profile, err)
	}
}

func TestTermFromFeature(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user_taste:coffee", "coffee"},
		{"plain", "plain"},
		{"a:b:c", "c"},
	}
	for _, tt := range tests {
		if got := termFromFeature(tt.in); got != tt.want {
			t.Errorf("termFromFeature(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
