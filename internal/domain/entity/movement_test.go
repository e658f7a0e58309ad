package entity

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func sampleMovement() Movement {
	ts := time.Date(2024, time.June, 15, 13, 30, 0, 0, time.UTC)
	return Movement{
		ID:           "665d21a7e1b2c3d4e5f60718",
		UploadID:     "9f2d1c3a-0b4e-4aef-8f0a-1234567890ab",
		Timestamp:    &ts,
		Registration: "PT-ABC",
		AircraftType: "C172",
		Destination:  "SORRISO",
		FlightRule:   RuleVFR,
		Runway:       "07",
		Operator:     "FULANO",
		CreatedAt:    time.Date(2024, time.June, 16, 8, 0, 0, 0, time.UTC),
	}
}

func TestMovementRoundTripBSON(t *testing.T) {
	original := sampleMovement()

	data, err := bson.Marshal(original)
	if err != nil {
		t.Fatalf("bson.Marshal failed: %v", err)
	}

	var decoded Movement
	if err := bson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal failed: %v", err)
	}

	if decoded.Registration != original.Registration ||
		decoded.AircraftType != original.AircraftType ||
		decoded.Destination != original.Destination ||
		decoded.FlightRule != original.FlightRule ||
		decoded.Runway != original.Runway ||
		decoded.Operator != original.Operator ||
		decoded.UploadID != original.UploadID {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
	if decoded.Timestamp == nil || !decoded.Timestamp.Equal(*original.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
}

func TestMovementRoundTripBSONNilTimestamp(t *testing.T) {
	original := sampleMovement()
	original.Timestamp = nil

	data, err := bson.Marshal(original)
	if err != nil {
		t.Fatalf("bson.Marshal failed: %v", err)
	}

	var decoded Movement
	if err := bson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal failed: %v", err)
	}
	if decoded.Timestamp != nil {
		t.Errorf("Timestamp = %v, want nil to survive the round trip", decoded.Timestamp)
	}
}

func TestMovementJSONKeys(t *testing.T) {
	data, err := json.Marshal(sampleMovement())
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}

	for _, key := range []string{"matricula", "tipo_aeronave", "destino", "regra_voo", "pista", "responsavel", "timestamp", "uploadId"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("marshaled movement is missing legacy key %q", key)
		}
	}

	var decoded Movement
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal into Movement failed: %v", err)
	}
	original := sampleMovement()
	if decoded.Registration != original.Registration || decoded.Operator != original.Operator || decoded.Runway != original.Runway {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
	if decoded.Timestamp == nil || !decoded.Timestamp.Equal(*original.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
}
