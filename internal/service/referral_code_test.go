package service

import (
	"strings"
	"testing"

	"github.com/red23-platform/internal/constants"
)

func TestNormalizeReferralCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  abc234  ", want: "ABC234"},
		{in: "xyz789", want: "XYZ789"},
		{in: "", want: ""},
		{in: "   ", want: ""},
	}
	for _, item := range cases {
		got := NormalizeReferralCode(item.in)
		if got != item.want {
			t.Fatalf("normalize failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestValidateReferralCodeFormat(t *testing.T) {
	cases := []struct {
		name       string
		code       string
		wantValid  bool
		wantReason string
	}{
		{name: "valid", code: "abc234", wantValid: true},
		{name: "valid_with_spaces", code: "  ABC234  ", wantValid: true},
		{name: "too_short", code: "AB2", wantReason: "too_short"},
		{name: "too_long", code: strings.Repeat("A", constants.ReferralCodeMaxLength+1), wantReason: "too_long"},
		{name: "invalid_characters", code: "ABC-234", wantReason: "invalid_characters"},
		{name: "confusable_letter", code: "ABCO234", wantReason: "invalid_characters"},
		{name: "reserved_word", code: "admin", wantReason: "reserved_word"},
		{name: "reserved_brand", code: "red23", wantReason: "reserved_word"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateReferralCodeFormat(tc.code)
			if result.IsValid != tc.wantValid {
				t.Fatalf("is_valid want %v got %v (reason=%s)", tc.wantValid, result.IsValid, result.Reason)
			}
			if tc.wantValid {
				if result.Reason != "" || len(result.Suggestions) != 0 {
					t.Fatalf("valid result should be bare, got reason=%s suggestions=%v", result.Reason, result.Suggestions)
				}
				return
			}
			if result.Reason != tc.wantReason {
				t.Fatalf("reason want %s got %s", tc.wantReason, result.Reason)
			}
			if len(result.Suggestions) == 0 {
				t.Fatalf("invalid result should carry suggestions")
			}
			for _, suggestion := range result.Suggestions {
				check := ValidateReferralCodeFormat(suggestion)
				if !check.IsValid {
					t.Fatalf("suggestion %q should itself be valid, reason=%s", suggestion, check.Reason)
				}
			}
		})
	}
}

func TestGenerateReferralCode(t *testing.T) {
	code, err := generateReferralCode(constants.ReferralCodeLength)
	if err != nil {
		t.Fatalf("generate code failed: %v", err)
	}
	if len(code) != constants.ReferralCodeLength {
		t.Fatalf("code length want %d got %d", constants.ReferralCodeLength, len(code))
	}
	for _, ch := range code {
		if !strings.ContainsRune(referralCodeAlphabet, ch) {
			t.Fatalf("code %q contains invalid character %q", code, ch)
		}
	}

	fallback, err := generateReferralCode(0)
	if err != nil {
		t.Fatalf("generate code with zero length failed: %v", err)
	}
	if len(fallback) != constants.ReferralCodeLength {
		t.Fatalf("fallback length want %d got %d", constants.ReferralCodeLength, len(fallback))
	}
}
