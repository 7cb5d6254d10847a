package transfer

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name string
		v    any
		ok   bool
	}{
		{"toggle ok", &QueueToggle{Do: "queue", PostID: 3, Nonce: "n"}, true},
		{"toggle bad action", &QueueToggle{Do: "publish", PostID: 3, Nonce: "n"}, false},
		{"toggle missing post", &QueueToggle{Do: "unqueue", Nonce: "n"}, false},
		{"toggle missing nonce", &QueueToggle{Do: "queue", PostID: 3}, false},
		{"reorder ok", &QueueReorder{Order: "[1,2]", Nonce: "n"}, true},
		{"reorder empty", &QueueReorder{Nonce: "n"}, false},
		{"timezone ok", &TimezoneUpdate{Timezone: "Europe/Belgrade"}, true},
		{"timezone unknown", &TimezoneUpdate{Timezone: "Mars/Olympus"}, false},
		{"post ok", &PostSave{PostType: "post", Status: "publish"}, true},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tc.v)
			if (err == nil) != tc.ok {
				t.Fatalf("Validate(%+v) = %v, want ok=%v", tc.v, err, tc.ok)
			}
		})
	}
}

func TestQueueSettingsUpdateDecodesLeniently(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name string
		in   string
		want QueueSettingsUpdate
	}{
		{"typed", `{"interval":60,"days":[1,3],"hours":{"start":9,"end":17},"restrict_hours":true}`,
			QueueSettingsUpdate{Interval: 60, Days: []int{1, 3}, Hours: &HoursInput{Start: 9, End: 17}, RestrictHours: true}},
		{"form strings", `{"interval":"90","days":["1","x",5],"hours":{"start":"09","end":"00"},"restrict_hours":"on"}`,
			QueueSettingsUpdate{Interval: 90, Days: []int{1, 5}, Hours: &HoursInput{Start: 9, End: 0}, RestrictHours: true}},
		{"wrong shapes", `{"interval":"abc","days":"1","hours":"9-17","restrict_hours":{}}`,
			QueueSettingsUpdate{}},
		{"half a range", `{"hours":{"start":"9"},"interval":1.5}`, QueueSettingsUpdate{}},
		{"empty", `{}`, QueueSettingsUpdate{}},
	} {
		var got QueueSettingsUpdate
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Errorf("%s: Unmarshal: %v", tc.name, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}

	var u QueueSettingsUpdate
	if err := json.Unmarshal([]byte(`[1,2]`), &u); err == nil {
		t.Error("non-object body accepted")
	}
}
