package enum

import "ledger/pkg/exception"

// KycStatus pending, approved, rejected
type KycStatus uint8

const (
	_kyc_status_beg KycStatus = iota
	KycStatusPending
	KycStatusApproved
	KycStatusRejected
	_kyc_status_end
)

var kycStatusNames = [...]string{"", "pending", "approved", "rejected"}

func (s KycStatus) IsAvailable() bool {
	return s > _kyc_status_beg && s < _kyc_status_end
}

func (s KycStatus) String() string {
	if !s.IsAvailable() {
		return "unknown"
	}
	return kycStatusNames[s]
}

func (s KycStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *KycStatus) UnmarshalText(text []byte) error {
	v, ok := lookup(kycStatusNames[:], string(text))
	if !ok {
		return exception.ErrInvalidEnum
	}
	*s = KycStatus(v)
	return nil
}
