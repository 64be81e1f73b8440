package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.StorageMode)
	require.Equal(t, int64(1000), cfg.ServiceFeeBps)
	require.Equal(t, int64(500), cfg.GatewayFeeBps)
	require.Equal(t, int64(500), cfg.ExtraGuestFee)
	require.Equal(t, int64(999), cfg.MembershipPrice)
	require.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	require.False(t, cfg.UsesRazorpay())
}

func TestLoadMongoRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	_, err := Load()
	require.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PRICING_SERVICE_FEE_BPS", "ten")
	_, err := Load()
	require.ErrorContains(t, err, "PRICING_SERVICE_FEE_BPS")
}

func TestLoadRazorpayKeysPaired(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_1")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.UsesRazorpay())
}
