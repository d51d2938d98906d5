// 指示: miu200521358
package tracking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	domaintracking "github.com/miu200521358/mu_posebind/pkg/domain/tracking"
)

func TestScriptedProviderFeedsSlotSet(t *testing.T) {
	provider := NewScriptedProvider()
	provider.SetSample(model.HEAD, domaintracking.TrackingSample{
		Position:       mmath.NewVec3(0, 1.6, 0),
		Rotation:       mmath.NewQuaternion(),
		IsTracking:     true,
		IsDeviceActive: true,
	})
	slots := domaintracking.NewSlotSet(nil, uuid.New(), model.HEAD, model.LEFT_HAND)

	slots.Sample(provider)
	head, _ := slots.Slot(model.HEAD)
	leftHand, _ := slots.Slot(model.LEFT_HAND)
	if !head.IsTracking() || head.Transform().LocalPosition() != mmath.NewVec3(0, 1.6, 0) {
		t.Fatalf("head slot mismatch: tracking=%v pos=%s", head.IsTracking(), head.Transform().LocalPosition())
	}
	if leftHand.IsTracking() {
		t.Fatalf("missing sample should not be tracking")
	}

	provider.SetLost(model.HEAD)
	slots.Sample(provider)
	if head.IsTracking() || !head.IsDeviceActive() {
		t.Fatalf("lost sample mismatch: tracking=%v active=%v", head.IsTracking(), head.IsDeviceActive())
	}
	if head.Transform().LocalPosition() != mmath.NewVec3(0, 1.6, 0) {
		t.Fatalf("lost sample should keep last pose: got=%s", head.Transform().LocalPosition())
	}

	provider.Clear()
	if _, ok := provider.Sample(model.HEAD); ok {
		t.Fatalf("clear should drop samples")
	}
}
