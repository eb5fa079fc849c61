package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLibraryName(t *testing.T) {
	tests := []struct {
		name    string
		libName string
		wantErr bool
	}{
		{name: "simple", libName: "requests", wantErr: false},
		{name: "dashes", libName: "typing-extensions", wantErr: false},
		{name: "underscores and case", libName: "Typing_Extensions", wantErr: false},
		{name: "dots and digits", libName: "zope.interface4", wantErr: false},
		{name: "single character", libName: "a", wantErr: false},
		{name: "empty", libName: "", wantErr: true},
		{name: "spaces", libName: "my lib", wantErr: true},
		{name: "flag injection", libName: "--index-url", wantErr: true},
		{name: "version specifier", libName: "requests==2.0", wantErr: true},
		{name: "path traversal", libName: "../../etc/passwd", wantErr: true},
		{name: "trailing dot", libName: "requests.", wantErr: true},
		{name: "shell metacharacter", libName: "rich;rm", wantErr: true},
		{name: "null byte", libName: "rich\x00", wantErr: true},
		{name: "too long", libName: strings.Repeat("a", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLibraryName(tt.libName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLibraryNames(t *testing.T) {
	assert.NoError(t, ValidateLibraryNames([]string{"rich", "numpy"}))
	assert.Error(t, ValidateLibraryNames(nil))
	assert.Error(t, ValidateLibraryNames([]string{"rich", "-y"}))
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"1.0.0", false},
		{"2.31.0", false},
		{"1.0.0rc1", false},
		{"1!2.0.0+local.7", false},
		{"", true},
		{"1.0/../..", true},
		{"1.0 ; rm", true},
		{strings.Repeat("1", 100), true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := ValidateVersion(tt.version)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSourcePath(t *testing.T) {
	assert.NoError(t, ValidateSourcePath("app/main.py"))
	assert.NoError(t, ValidateSourcePath("/home/user/gui.pyw"))
	assert.Error(t, ValidateSourcePath("main.go"))
	assert.Error(t, ValidateSourcePath(""))
	assert.Error(t, ValidateSourcePath("a\x00.py"))
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative file", path: "requirements.txt", wantErr: false},
		{name: "nested relative", path: "build/requirements.txt", wantErr: false},
		{name: "home", path: "/home/user/project/requirements.txt", wantErr: false},
		{name: "tmp", path: "/tmp/req.txt", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "directory", path: "build/", wantErr: true},
		{name: "dot", path: ".", wantErr: true},
		{name: "etc", path: "/etc/requirements.txt", wantErr: true},
		{name: "escapes into usr bin", path: "/tmp/../usr/bin/pip", wantErr: true},
		{name: "null byte", path: "req\x00.txt", wantErr: true},
		{name: "too long", path: strings.Repeat("a", 4096), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
