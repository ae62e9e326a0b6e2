package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/anamaak-service/pkg/util"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	out := map[string]string{}
	for _, fe := range domainErr.Fields {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestValidateRegisterRequest(t *testing.T) {
	err := Validate(RegisterRequest{Email: "not-an-email", Password: "123", Nom: "A"})
	fields := fieldErrors(t, err)

	assert.Equal(t, "Email invalide", fields["email"])
	assert.Equal(t, "Doit contenir au moins 6 caractères", fields["password"])
	assert.Equal(t, "Doit contenir au moins 2 caractères", fields["nom"])

	assert.NoError(t, Validate(RegisterRequest{Email: "a@b.ma", Password: "secret123", Nom: "Amina"}))
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	err := Validate(ChangePasswordRequest{})
	fields := fieldErrors(t, err)

	// Error keys must match the wire shape, not the Go field names.
	assert.Contains(t, fields, "currentPassword")
	assert.Contains(t, fields, "newPassword")
	assert.Equal(t, "Champ requis", fields["currentPassword"])
}

func TestValidateCreateReportRequest(t *testing.T) {
	bad := CreateReportRequest{
		Type:         "V",
		Description:  "trop court",
		Localisation: "ici",
		Quartier:     "C",
	}
	fields := fieldErrors(t, Validate(bad))
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "localisation")
	assert.Contains(t, fields, "quartier")

	lat, lon := 91.0, 12.0
	bad2 := CreateReportRequest{
		Type:         "Voirie",
		Description:  "Nid de poule dangereux sur la chaussée",
		Localisation: "Avenue Mohammed V",
		Quartier:     "Centre-ville",
		Latitude:     &lat,
		Longitude:    &lon,
	}
	fields = fieldErrors(t, Validate(bad2))
	assert.Equal(t, "Latitude invalide", fields["latitude"])

	lat = 33.58
	assert.NoError(t, Validate(bad2))
}

func TestValidateUpdateStatusRequest(t *testing.T) {
	fields := fieldErrors(t, Validate(UpdateStatusRequest{Statut: "archive"}))
	assert.Equal(t, "Valeurs autorisées: soumise, en_traitement, resolu", fields["statut"])

	assert.NoError(t, Validate(UpdateStatusRequest{Statut: "resolu"}))
}
