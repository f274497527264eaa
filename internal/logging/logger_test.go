package logging

import "testing"

func TestNewLoggerDefaultConfig(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
	logger.Infof("hello %s", "world")
	logger.Debugf("below default level, should not panic")
	_ = logger.Sync()
}

func TestNewLoggerLevels(t *testing.T) {
	for _, lvl := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		logger := NewLogger(&Config{Level: lvl})
		logger.Debugf("d")
		logger.Infof("i")
		logger.Warnf("w")
		logger.Errorf("e")
	}
}

func TestDefaultAndSetDefault(t *testing.T) {
	original := Default()
	if original == nil {
		t.Fatal("Default() returned nil")
	}

	custom := NewLogger(&Config{Level: LevelDebug})
	SetDefault(custom)
	if Default() != custom {
		t.Fatal("SetDefault did not replace the package default logger")
	}

	SetDefault(original)
}
