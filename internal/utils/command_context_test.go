package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depctl/internal/utils"
)

func TestCommandContextAccessorRoundTripsValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, available)

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/depctl/config.yaml")
	executionContext = accessor.WithCIEnvironment(executionContext, true)

	configurationFilePath, available := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, available)
	require.Equal(testInstance, "/etc/depctl/config.yaml", configurationFilePath)

	ciEnvironment, available := accessor.CIEnvironment(executionContext)
	require.True(testInstance, available)
	require.True(testInstance, ciEnvironment)
}

func TestNewInterruptibleContextFollowsParentCancellation(testInstance *testing.T) {
	parentContext, cancelParent := context.WithCancel(context.Background())
	interruptibleContext, stop := utils.NewInterruptibleContext(parentContext)
	defer stop()

	cancelParent()
	<-interruptibleContext.Done()
	require.ErrorIs(testInstance, interruptibleContext.Err(), context.Canceled)
}
