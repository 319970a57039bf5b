package services

import (
	"testing"

	"wms-core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueNeverReusesCodes(t *testing.T) {
	f := newFixture()
	lotID := types.SnowflakeID(1001)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		codes, err := f.stickers.Issue(f.scope, lotID, 25)
		require.NoError(t, err)
		for _, c := range codes {
			assert.False(t, seen[c], "code %s issued twice", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, 250)
}

func TestStickerLifecycle(t *testing.T) {
	f := newFixture()

	codes, err := f.stickers.Issue(f.scope, types.SnowflakeID(1001), 1)
	require.NoError(t, err)
	code := codes[0]

	st, err := f.stickers.Resolve(code)
	require.NoError(t, err)
	assert.Equal(t, StickerActive, st.Status)

	st, err = f.stickers.MarkEvent(f.scope, code, EventPicked)
	require.NoError(t, err)
	assert.Equal(t, StickerPicked, st.Status)

	// scanning the same event twice fails structurally
	_, err = f.stickers.MarkEvent(f.scope, code, EventPicked)
	var ist *InvalidStateTransitionError
	require.ErrorAs(t, err, &ist)

	// and skipping ahead is just as illegal
	_, err = f.stickers.MarkEvent(f.scope, code, EventReturned)
	assert.ErrorAs(t, err, &ist)

	st, err = f.stickers.MarkEvent(f.scope, code, EventDelivered)
	require.NoError(t, err)
	assert.Equal(t, StickerDelivered, st.Status)

	st, err = f.stickers.MarkEvent(f.scope, code, EventReturned)
	require.NoError(t, err)
	assert.Equal(t, StickerReturned, st.Status)
}

func TestResolveUnknownCode(t *testing.T) {
	f := newFixture()

	_, err := f.stickers.Resolve("SU0000")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = f.stickers.MarkEvent(f.scope, "SU0000", EventPicked)
	assert.ErrorAs(t, err, &nf)
}

func TestClaimAndReleaseForOrder(t *testing.T) {
	f := newFixture()
	lotID := types.SnowflakeID(1001)
	orderID := types.SnowflakeID(2001)

	_, err := f.stickers.Issue(f.scope, lotID, 5)
	require.NoError(t, err)

	claimed, err := f.stickers.claimForOrder(lotID, orderID, 3)
	require.NoError(t, err)
	assert.Len(t, claimed, 3)

	// only two free stickers remain
	_, err = f.stickers.claimForOrder(lotID, types.SnowflakeID(2002), 3)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	require.NoError(t, f.stickers.releaseOrder(orderID))
	again, err := f.stickers.claimForOrder(lotID, types.SnowflakeID(2002), 5)
	require.NoError(t, err)
	assert.Len(t, again, 5)
}

func TestRebindLotFollowsStock(t *testing.T) {
	f := newFixture()
	from := types.SnowflakeID(1001)
	to := types.SnowflakeID(1002)

	_, err := f.stickers.Issue(f.scope, from, 4)
	require.NoError(t, err)

	moved, err := f.stickers.rebindLot(from, to, 3)
	require.NoError(t, err)
	require.Len(t, moved, 3)

	st, err := f.stickers.Resolve(moved[0])
	require.NoError(t, err)
	assert.Equal(t, to, st.LotID)

	// one sticker left on the source lot
	left, err := f.stickers.claimForOrder(from, types.SnowflakeID(2001), 1)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestVoidOnlyTouchesUnboundActive(t *testing.T) {
	f := newFixture()
	lotID := types.SnowflakeID(1001)

	codes, err := f.stickers.Issue(f.scope, lotID, 3)
	require.NoError(t, err)

	_, err = f.stickers.MarkEvent(f.scope, codes[0], EventPicked)
	require.NoError(t, err)

	require.NoError(t, f.stickers.voidCodes(codes))

	st, _ := f.stickers.Resolve(codes[0])
	assert.Equal(t, StickerPicked, st.Status, "picked sticker survives a void sweep")
	st, _ = f.stickers.Resolve(codes[1])
	assert.Equal(t, StickerVoid, st.Status)
}
