package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

func TestNew_CompilesAllSchemas(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	assert.Len(t, v.schemas, len(allSchemas))
}

func TestClientSchema(t *testing.T) {
	v := MustNew()

	require.NoError(t, v.Validate(Client, []byte(`{"firstName":"Léa","lastName":"Martin","email":"lea@example.com"}`)))
	require.NoError(t, v.Validate(Client, []byte(`{"firstName":"Léa","lastName":"Martin","email":""}`)))

	fields := fieldErrors(t, v.Validate(Client, []byte(`{"firstName":""}`)))
	assert.Equal(t, "Trop court", fields["firstName"])
	assert.Equal(t, "Champ requis", fields["lastName"])

	fields = fieldErrors(t, v.Validate(Client, []byte(`{"firstName":"a","lastName":"b","email":"nope"}`)))
	assert.Equal(t, "Format invalide", fields["email"])

	fields = fieldErrors(t, v.Validate(Client, []byte(`{"firstName":"a","lastName":"b","businessId":"x"}`)))
	assert.Equal(t, "Champ inconnu", fields["businessId"])
}

func TestServiceSchema_PriceBounds(t *testing.T) {
	v := MustNew()

	require.NoError(t, v.Validate(Service, []byte(`{"name":"Soin","price":999999.99,"category":"massage"}`)))
	require.NoError(t, v.Validate(Service, []byte(`{"name":"Soin","price":0,"duration":null}`)))

	fields := fieldErrors(t, v.Validate(Service, []byte(`{"name":"Soin","price":1000000}`)))
	assert.Equal(t, "Valeur trop grande", fields["price"])

	fields = fieldErrors(t, v.Validate(Service, []byte(`{"name":"Soin","price":-1}`)))
	assert.Equal(t, "Valeur trop petite", fields["price"])

	fields = fieldErrors(t, v.Validate(Service, []byte(`{"name":"Soin","price":10,"duration":1441}`)))
	assert.Equal(t, "Valeur trop grande", fields["duration"])

	fields = fieldErrors(t, v.Validate(Service, []byte(`{"name":"Soin","price":10,"category":"coiffure"}`)))
	assert.Equal(t, "Valeur non autorisée", fields["category"])
}

const (
	clientUUID  = "6f1c2b7e-3d4a-4c8e-9a51-0b2d7e4f8c13"
	serviceUUID = "a4e9d3c2-1b7f-4e60-8d25-9c3f0a6b1e47"
)

func TestQuoteSchema_Items(t *testing.T) {
	v := MustNew()

	require.NoError(t, v.Validate(Quote, []byte(`{"clientId":"`+clientUUID+`","items":[{"serviceId":"`+serviceUUID+`","quantity":1}]}`)))
	require.NoError(t, v.Validate(Quote, []byte(`{"clientId":"`+clientUUID+`","items":[{"serviceId":null,"description":"Soin","quantity":1}]}`)))

	fields := fieldErrors(t, v.Validate(Quote, []byte(`{"clientId":"`+clientUUID+`","items":[]}`)))
	assert.Equal(t, "Au moins un élément requis", fields["items"])

	fields = fieldErrors(t, v.Validate(Quote, []byte(`{"clientId":"`+clientUUID+`","items":[{"quantity":0}]}`)))
	assert.Equal(t, "Valeur trop petite", fields["items.0.quantity"])

	fields = fieldErrors(t, v.Validate(Quote, []byte(`{"clientId":"`+clientUUID+`","validUntil":"tomorrow","items":[{"quantity":1}]}`)))
	assert.Equal(t, "Format invalide", fields["validUntil"])
}

func TestQuoteSchema_ReferencesMustBeUUIDs(t *testing.T) {
	v := MustNew()

	fields := fieldErrors(t, v.Validate(Quote, []byte(`{"clientId":"abc","items":[{"serviceId":"s1","quantity":1}]}`)))
	assert.Equal(t, "Format invalide", fields["clientId"])
	assert.Equal(t, "Format invalide", fields["items.0.serviceId"])
}

func TestDecode(t *testing.T) {
	v := MustNew()
	var in domain.ServiceInput
	require.NoError(t, v.Decode(Service, []byte(`{"name":"Épilation","price":25.5,"isActive":false}`), &in))
	assert.Equal(t, "Épilation", in.Name)
	assert.Equal(t, 25.5, in.Price)
	require.NotNil(t, in.IsActive)
	assert.False(t, *in.IsActive)

	fields := fieldErrors(t, v.Decode(Service, []byte(`{not json`), &in))
	assert.Equal(t, "JSON invalide", fields["body"])
}

func TestRegisterSchema(t *testing.T) {
	v := MustNew()
	fields := fieldErrors(t, v.Validate(Register, []byte(`{"email":"a@b.co","password":"short"}`)))
	assert.Equal(t, "Trop court", fields["password"])
}
