package obs

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

const (
	rpcVersion = 1

	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opRequest         = 6
	opRequestResponse = 7

	// close code sent by obs-websocket when authentication fails
	closeAuthenticationFailed = 4009

	requestStatusSuccess = 100
)

type message struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type hello struct {
	OBSWebSocketVersion string `json:"obsWebSocketVersion"`
	RPCVersion          int    `json:"rpcVersion"`
	Authentication      *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication,omitempty"`
}

type identify struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

type identified struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type request struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type requestResponse struct {
	RequestType   string `json:"requestType"`
	RequestID     string `json:"requestId"`
	RequestStatus struct {
		Result  bool   `json:"result"`
		Code    int    `json:"code"`
		Comment string `json:"comment"`
	} `json:"requestStatus"`
	ResponseData json.RawMessage `json:"responseData"`
}

type outputListResponse struct {
	Outputs []struct {
		OutputName   string `json:"outputName"`
		OutputKind   string `json:"outputKind"`
		OutputActive bool   `json:"outputActive"`
	} `json:"outputs"`
}

// shared by GetOutputStatus and GetStreamStatus
type outputStatusResponse struct {
	OutputActive        bool    `json:"outputActive"`
	OutputReconnecting  bool    `json:"outputReconnecting"`
	OutputDuration      float64 `json:"outputDuration"`
	OutputBytes         float64 `json:"outputBytes"`
	OutputSkippedFrames float64 `json:"outputSkippedFrames"`
	OutputTotalFrames   float64 `json:"outputTotalFrames"`
}

type streamServiceSettingsResponse struct {
	StreamServiceType     string `json:"streamServiceType"`
	StreamServiceSettings struct {
		Server string `json:"server"`
		Key    string `json:"key"`
	} `json:"streamServiceSettings"`
}

// authResponse computes the obs-websocket authentication string:
// base64(sha256(base64(sha256(password + salt)) + challenge))
func authResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	auth := sha256.Sum256([]byte(secretB64 + challenge))

	return base64.StdEncoding.EncodeToString(auth[:])
}

func counter(v float64) uint64 {
	if v <= 0 {
		return 0
	}
	return uint64(v)
}
