package docker

import (
	"reflect"
	"testing"
)

func TestBuildExecArgs(t *testing.T) {
	c := New("fake-esx")

	got := c.buildExecArgs("esxcli system maintenanceMode get")
	want := []string{"exec", "-i", "fake-esx", "/bin/sh", "-c", "esxcli system maintenanceMode get"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildExecArgsWithUser(t *testing.T) {
	c := New("fake-esx", WithUser("root"))

	got := c.buildExecArgs("vim-cmd vmsvc/getallvms")
	want := []string{"exec", "-i", "-u", "root", "fake-esx", "/bin/sh", "-c", "vim-cmd vmsvc/getallvms"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestString(t *testing.T) {
	if got := New("fake-esx").String(); got != "docker://fake-esx" {
		t.Errorf("unexpected description: %s", got)
	}
	if got := New("fake-esx", WithUser("root")).String(); got != "docker://root@fake-esx" {
		t.Errorf("unexpected description: %s", got)
	}
}

func TestNotConnected(t *testing.T) {
	c := New("fake-esx")
	if c.IsConnected() {
		t.Error("expected not connected before Connect")
	}
	if err := c.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
