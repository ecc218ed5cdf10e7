package domain

// UserRecord is the backend's view of the signed-in user. Subscription is the
// entitlement flag that unlocks premium features.
type UserRecord struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Avatar        string `json:"image,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Subscription  bool   `json:"subscription"`
}
