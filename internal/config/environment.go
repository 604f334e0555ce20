// internal/config/environment.go
//
// Deployment environment and the license key pair it selects.
//
// The selection rule lives in one lookup table.  Keys are base64 PEM public
// keys and are treated as opaque here.

package config

// Environment is the ADEPT_ENV selector.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

// KeyPair holds the client and server license public keys.
type KeyPair struct {
	Client string `json:"client" validate:"required,base64"`
	Server string `json:"server" validate:"required,base64"`
}

var (
	productionKeys = KeyPair{
		Client: "LS0tLS1CRUdJTiBQVUJMSUMgS0VZLS0tLS0KTUlJQklqQU5CZ2txaGtpRzl3MEJBUUVGQUFPQ0FROEFNSUlCQ2dLQ0FRRUFuOEJaUEhGaFQwUStVU1pUa2Nkdwp2eGZ0V0swR2NsVkFWd2ZsQVVvWHY3Z3ZlR3grWWZJaGVLV0ZWdTUwY29keHhyMHpUVG9MSFIva0l5RjJnR2VFClEvZHBIYU9kbjFWTjV3UXFGWVl0NXRmVk5wV24wQW9RUXJpYmUweWhJWmJRMlVCT3FGYzZ1WU1QSXJ5eE9TNmkKUDEwQUVtTHlGZ0lMeVp2b3d2S0NXMG9Sbjk2NWpDTWtSa1FjQXZWSXlkL0plcVFlc2RjRHgwK1hPaXZCN0xUWApsd1NSTStVQnBUK2l1VjlzQ1dkbndCdE9ndlUzZnRJL3NWWUhTaFdvd01HV2FJV0RpcmZteXdKanQxdmFIa2JJCis5cDU5VCtnaUZYTFpMb25vMm5HaDlrTXV3dm9vU21hNDFRM0ZoV3Y0Rmxnc2g1MVZkdnlDRytReEJ5THljcFMKdlFJREFRQUIKLS0tLS1FTkQgUFVCTElDIEtFWS0tLS0tCg==",
		Server: "LS0tLS1CRUdJTiBQVUJMSUMgS0VZLS0tLS0KTUlJQklqQU5CZ2txaGtpRzl3MEJBUUVGQUFPQ0FROEFNSUlCQ2dLQ0FRRUFzSDJoL28rSzRmV2NRMis4STFWRwptMzBDRW5Zbi83SlVTSXFIOG1saEthRVBuMnNtdmhyaEUrOU5kdUxqd0RNKzZSWENXaDZ6c2NJN1h6b0hVTkxYCmkxUEE5eHN5a1pRZ1VKd21hMGx1UTFaODRJcW43MDgwc3NXUUVQOE4rV0dCS0xnUG11UDdpVk1nUHpiR2RINWcKa0hFUll3SEc3YXByVlNoQmlDR3RxbDFNeGlndHN6SjdLY0VKV21JNG13aGFRTmx1NXlBaHJ1c2ovb0FwcUF6MAp3SzRzRDRHVkxCenlBR2NlNDA1QU94YkZKWG12MXVZa1RodDVrbDF3dkF3QXZQTmIyVWdVNWF3UlFXNVpHT1VRCmlyT3AvSnNuVWg5bjJqb25CMndqQkFQRG1ld0NnSmMrM0huRzlpRGhzeSsvZWpacU1kUUY5M3E1SWJ4aDc4ZE8KZ1FJREFRQUIKLS0tLS1FTkQgUFVCTElDIEtFWS0tLS0tCg==",
	}
	stagingKeys = KeyPair{
		Client: "LS0tLS1CRUdJTiBQVUJMSUMgS0VZLS0tLS0KTUlJQklqQU5CZ2txaGtpRzl3MEJBUUVGQUFPQ0FROEFNSUlCQ2dLQ0FRRUF6MXBOSy9RVXNSaGZxR2tpNUpWLwpERkFjUzA1cnQ1Tk5ybjV5dmFSV01kTmtFOHB0dVI2RkNnTXpDdzBQeDV1Q2pGdnBEajJmbGc4STRxMytLV2QxClJsWi9LT216a0VSZDNYYkFjNWt2cTlZSUZqWDdhRXpHNHdWT2lhM0h5T2FJYlBMUER2Q1hya0hnV0JwWHBaM2EKOHErUDhtTVVrUlgxc0NpWGM3U3VnbE1GNUZEVnNHSmlmSE9SbkJUYUx4MEYrYkhPOWV3MmxXZTFyR3BLTjlkcgpJMnIyWW9pTjk4cG9Cd0J6TjlVWi9PNTJ3cVJWeHlBUEdlMWxVNWxNeXI5YU5wbXFGRWM2dzB4TWx4azJpWTAzCnVWd1QrTHl1cE5LOUVZQXk5Wk1ZNnZSWDNOSThxYW4rckNXb2RTMnVyL1FFMjRON0VVR0tGcW12emlWMmwyWjcKaFFJREFRQUIKLS0tLS1FTkQgUFVCTElDIEtFWS0tLS0tCg==",
		Server: "LS0tLS1CRUdJTiBQVUJMSUMgS0VZLS0tLS0KTUlJQklqQU5CZ2txaGtpRzl3MEJBUUVGQUFPQ0FROEFNSUlCQ2dLQ0FRRUE4S1lLb21UR3hlYm11aVVwNjVCeQprRVBOeks1c3gyTFA3MWw5VXZMNExtQnB0N01uZ3BOMTNlQjc2WGEzU1FnUnM1ekp5TzlRQXBVM29mSEtMRHdwCmVDYTV4TlVRYkI5YkRGR1FBNTNiSVlCTFdITEZPWTFabGdvOWJJMW81NHBwWVhTeEx1SThLb3VCWC9CcFlxM0YKeWF5QzRjbVNPVktsNnJYUENNNnlpeHQrTWI0akxtcTlHcFRGNzhaUmp5cHArdUo2RndsTzNCZGhYc0VDMXJLNgpFMktkNlM1emkxOXVRUE9na1I4RFRDNzF6b3N2aEVNOS9pVElKcHdmM2sxS1R1a1N1a2lwQTBjN0s0Q2g5THZTCjJPbzFFV3RtQlFXY3ZTRjMya2x1VUNqWXMveXJSbXZ5ZTVFNFFKbTAveUNzYW1ueEJyeTdySWJXaFQzRWlhY04KQ1FJREFRQUIKLS0tLS1FTkQgUFVCTElDIEtFWS0tLS0tCg==",
	}
)

var licenseKeys = map[Environment]KeyPair{
	EnvProduction: productionKeys,
	EnvStaging:    stagingKeys,
}

// IsProduction reports whether e selects the production keys.
func (e Environment) IsProduction() bool { return e == EnvProduction }

// LicenseKeys returns the key pair bound to e.  Every non-production value,
// including an empty one, gets the staging pair.
func LicenseKeys(e Environment) KeyPair {
	if kp, ok := licenseKeys[e]; ok {
		return kp
	}
	return stagingKeys
}
