package utils

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestUint32Length(t *testing.T) {
	tcs := []struct {
		name string
		data []byte
	}{
		{
			name: "Empty",
			data: []byte{},
		},
		{
			name: "ProductCode",
			data: []byte("122856"),
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			n, err := WriteWithUint32Length(buf, tc.data)
			if err != nil {
				t.Fatalf("Fail to write %v: %v", tc.data, err)
			}
			if n != 4+len(tc.data) {
				t.Errorf("Got %d bytes written, want %d", n, 4+len(tc.data))
			}
			got, err := ReadWithUint32Length(buf)
			if err != nil {
				t.Fatalf("Fail to read %v: %v", tc.data, err)
			}
			if !reflect.DeepEqual(got, tc.data) {
				t.Errorf("Got %v, want %v", got, tc.data)
			}
			if _, err := ReadWithUint32Length(buf); !errors.Is(err, io.EOF) {
				t.Errorf("Got error %v at the end, want %v", err, io.EOF)
			}
		})
	}
}

func TestReadWithUint32Length_Incomplete(t *testing.T) {
	tcs := []struct {
		name string
		data []byte
	}{
		{"ShortLength", []byte{0, 0}},
		{"NoData", []byte{0, 0, 0, 3}},
		{"ShortData", []byte{0, 0, 0, 3, 'a'}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadWithUint32Length(bytes.NewReader(tc.data))
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("Got error %v, want %v", err, io.ErrUnexpectedEOF)
			}
		})
	}
}

func TestWriteBigEndian(t *testing.T) {
	buf := &bytes.Buffer{}
	n, err := WriteBigEndian(buf, int64(1), int32(2), uint32(3))
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("Got %d bytes written, want 16", n)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3}
	if !reflect.DeepEqual(buf.Bytes(), want) {
		t.Errorf("Got %v, want %v", buf.Bytes(), want)
	}
}

func TestRun(t *testing.T) {
	var calls []int
	step := func(i int) error {
		calls = append(calls, i)
		if i == 2 {
			return errors.New("step 2")
		}
		return nil
	}
	err := Run(ToRunnable1(step, 1), ToRunnable1(step, 2), ToRunnable1(step, 3))
	if err == nil || err.Error() != "step 2" {
		t.Errorf("Got error %v, want step 2", err)
	}
	if !reflect.DeepEqual(calls, []int{1, 2}) {
		t.Errorf("Got calls %v, want [1 2]", calls)
	}
}
