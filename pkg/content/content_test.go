package content_test

import (
	"testing"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/content"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusLabel(t *testing.T) {
	assert.Equal(t, "発送済み", content.OrderStatusLabel(content.OrderShipped))
	assert.Equal(t, "キャンセル", content.OrderStatusLabel(content.OrderCancelled))
	assert.Equal(t, "on_hold", content.OrderStatusLabel("on_hold"))
}

func TestCancellable(t *testing.T) {
	assert.True(t, content.Cancellable(content.OrderPending))
	assert.True(t, content.Cancellable(content.OrderPaid))
	assert.False(t, content.Cancellable(content.OrderShipped))
	assert.False(t, content.Cancellable(content.OrderCancelled))
}

func TestNavigation_LinksAreRooted(t *testing.T) {
	for _, nav := range [][]content.NavItem{content.StoreNav, content.MypageNav, content.AdminNav} {
		for _, item := range nav {
			assert.NotEmpty(t, item.Label)
			assert.Equal(t, byte('/'), item.Href[0], item.Href)
		}
	}
}
