package requestresponse

import "time"

// CreateAPIKeyRequest : тело запроса на выпуск API ключа
type CreateAPIKeyRequest struct {
	Name        string     `json:"name" validate:"required,max=128" example:"telematics-ingest"`
	CompanyID   int64      `json:"companyId" validate:"required,gt=0" example:"42"`
	Permissions []string   `json:"permissions" validate:"required,min=1,dive,required" example:"loads:read"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" example:"2027-01-01T00:00:00Z"`
}

// CreateAPIKeyResponse : сырой ключ возвращается только один раз
type CreateAPIKeyResponse struct {
	Response struct {
		ID        string     `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Key       string     `json:"key" example:"fak_3f9c..."`
		ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	} `json:"response"`
}

// RevokeAPIKeyResponse : ответ на отзыв ключа
type RevokeAPIKeyResponse struct {
	Response struct {
		Revoked bool `json:"revoked" example:"true"`
	} `json:"response"`
}
