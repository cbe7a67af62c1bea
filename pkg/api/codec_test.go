package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&SettleUpRequest{SquadID: "s1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"squadId":"s1"}`, string(data))

	var req AddExpenseRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"squadId":"s1","expense":{"description":"Taxi","amount":1250,"members":["a","b"]}}`), &req))
	assert.Equal(t, "s1", req.SquadID)
	assert.Equal(t, int64(1250), req.Expense.Amount)
	assert.Equal(t, []string{"a", "b"}, req.Expense.Members)

	var empty ListSquadsRequest
	assert.NoError(t, codec.Unmarshal(nil, &empty))

	assert.Error(t, codec.Unmarshal([]byte(`{"amount":"lots"}`), &PreviewSplitRequest{}))
}
