package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRecordsOutcome(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")

	before := testutil.CollectAndCount(ExternalCallDuration)

	func() (err error) {
		defer Time(ctx, "test.ok")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, "test.fail")(&err)
		return errors.New("boom")
	}()

	assert.Equal(t, before+2, testutil.CollectAndCount(ExternalCallDuration))
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestConfigureLogger(t *testing.T) {
	require.NoError(t, ConfigureLogger("debug", "json"))
	require.NoError(t, ConfigureLogger("info", ""))
	assert.Error(t, ConfigureLogger("loud", "text"))
	assert.Error(t, ConfigureLogger("info", "xml"))
}
