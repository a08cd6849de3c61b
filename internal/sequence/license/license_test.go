package license

import (
	"testing"

	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/stretchr/testify/require"
)

func TestMachine_ValidClientTerminatesImmediately(t *testing.T) {
	m := New(Credentials{Username: "alice", Domain: "CORP"})

	out, err := m.Step(&pdu.LicenseMessage{ErrorAlert: &pdu.LicensingErrorMessage{ErrorCode: 7}})
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, StateComplete, m.State())
	require.False(t, m.AwaitingInput())
}

func TestMachine_UnknownMessageTerminates(t *testing.T) {
	m := New(Credentials{Username: "alice"})
	out, err := m.Step(&pdu.LicenseMessage{})
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, StateComplete, m.State())
}

func TestMachine_NewLicenseFlow(t *testing.T) {
	m := New(Credentials{Username: "alice", Domain: "CORP"})

	out, err := m.Step(&pdu.LicenseMessage{LicenseRequest: &pdu.ServerLicenseRequest{}})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, StateAwaitingChallenge, m.State())

	out, err = m.Step(&pdu.LicenseMessage{PlatformChallenge: &pdu.ServerPlatformChallenge{}})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, StateAwaitingNewLicense, m.State())

	out, err = m.Step(&pdu.LicenseMessage{NewLicense: &pdu.ServerNewLicense{}})
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, StateComplete, m.State())
}

func TestMachine_RejectsOutOfOrderNewLicense(t *testing.T) {
	m := New(Credentials{Username: "alice"})
	_, err := m.Step(&pdu.LicenseMessage{LicenseRequest: &pdu.ServerLicenseRequest{}})
	require.NoError(t, err)

	_, err = m.Step(&pdu.LicenseMessage{NewLicense: &pdu.ServerNewLicense{}})
	require.Error(t, err)
}
