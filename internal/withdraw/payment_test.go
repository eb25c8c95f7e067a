package withdraw

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectCardsBatch(t *testing.T) {
	form := url.Values{}
	form.Set("cardsCount", "3")
	form.Set("giftCard0", "GC-AAA")
	form.Set("cardPin0", "1111")
	form.Set("giftCard1", "GC-BBB")
	form.Set("cardPin1", "2222")
	form.Set("giftCard2", "GC-CCC")

	cards := CollectCards(form)
	assert.Len(t, cards, 3)
	assert.Equal(t, "GC-AAA", cards[0].GiftCard)
	assert.Equal(t, "1111", cards[0].Pin)
	assert.Equal(t, "file0", cards[0].FileKey)
	assert.Equal(t, "file2", cards[2].FileKey)
	assert.Equal(t, "", cards[2].Pin)
}

func TestCollectCardsSkipsHoles(t *testing.T) {
	form := url.Values{}
	form.Set("cardsCount", "3")
	form.Set("giftCard0", "GC-AAA")
	// giftCard1 missing
	form.Set("giftCard2", "GC-CCC")

	cards := CollectCards(form)
	assert.Len(t, cards, 2)
	assert.Equal(t, "GC-AAA", cards[0].GiftCard)
	assert.Equal(t, "GC-CCC", cards[1].GiftCard)
}

func TestCollectCardsIteratesExactlyCount(t *testing.T) {
	form := url.Values{}
	form.Set("cardsCount", "1")
	form.Set("giftCard0", "GC-AAA")
	// Declared count wins; entries past it are ignored
	form.Set("giftCard1", "GC-BBB")

	cards := CollectCards(form)
	assert.Len(t, cards, 1)
	assert.Equal(t, "GC-AAA", cards[0].GiftCard)
}

func TestCollectCardsLegacySingle(t *testing.T) {
	form := url.Values{}
	form.Set("giftCard", "GC-OLD")
	form.Set("cardPin", "4321")

	cards := CollectCards(form)
	assert.Len(t, cards, 1)
	assert.Equal(t, "GC-OLD", cards[0].GiftCard)
	assert.Equal(t, "4321", cards[0].Pin)
	assert.Equal(t, "file", cards[0].FileKey)
}

func TestCollectCardsEmpty(t *testing.T) {
	assert.Nil(t, CollectCards(url.Values{}))

	form := url.Values{}
	form.Set("cardsCount", "0")
	assert.Nil(t, CollectCards(form))

	form.Set("cardsCount", "not-a-number")
	assert.Nil(t, CollectCards(form))
}
