package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("metrics-test", "ok"))
	RecordFetch("metrics-test", "ok", 3, 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(SourceFetchTotal.WithLabelValues("metrics-test", "ok")))
}

func TestRecordDuplicatesIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(DuplicatesDropped.WithLabelValues("metrics-test"))
	RecordDuplicates("metrics-test", 0)
	RecordDuplicates("metrics-test", 2)
	assert.Equal(t, before+2, testutil.ToFloat64(DuplicatesDropped.WithLabelValues("metrics-test")))
}
