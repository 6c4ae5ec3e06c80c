package models

import "testing"

// TestUserNeeds2FA verifies the TOTP step is required only when 2FA is both
// enrolled and enabled.
func TestUserNeeds2FA(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	tests := []struct {
		name        string
		totpSecret  *string
		totpEnabled bool
		want        bool
	}{
		{name: "no secret and not enabled", totpSecret: nil, totpEnabled: false, want: false},
		{name: "secret set but not enabled", totpSecret: &secret, totpEnabled: false, want: false},
		{name: "secret set and enabled", totpSecret: &secret, totpEnabled: true, want: true},
		{name: "nil secret but enabled (edge case)", totpSecret: nil, totpEnabled: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TOTPSecret: tt.totpSecret, TOTPEnabled: tt.totpEnabled}
			if got := u.Needs2FA(); got != tt.want {
				t.Errorf("Needs2FA() = %v, want %v (secret=%v, enabled=%v)",
					got, tt.want, tt.totpSecret != nil, tt.totpEnabled)
			}
		})
	}
}
