/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gojose "github.com/go-jose/go-jose/v3"

	"github.com/hyperledger/aries-zkcomm-go/pkg/kms"
)

const (
	// ContextV1 of the DID document.
	ContextV1 = "https://www.w3.org/ns/did/v1"

	jsonldType         = "type"
	jsonldID           = "id"
	jsonldController   = "controller"
	jsonldServicePoint = "serviceEndpoint"

	// various public key encodings.
	jsonldPublicKeyBase58     = "publicKeyBase58"
	jsonldPublicKeyBase64     = "publicKeyBase64"
	jsonldPublicKeyHex        = "publicKeyHex"
	jsonldPublicKeyJwk        = "publicKeyJwk"
	jsonldPublicKeyMultibase  = "publicKeyMultibase"
	jsonldBlockchainAccountID = "blockchainAccountId"
)

// Doc DID Document definition.
type Doc struct {
	Context            []string
	ID                 string
	VerificationMethod []VerificationMethod
	Authentication     []Verification
	Service            []Service
}

// VerificationMethod DID doc verification method. Value holds the raw public key bytes; it is empty
// for blockchain account methods, which identify a key only by its account address.
type VerificationMethod struct {
	ID                  string
	Type                string
	Controller          string
	Value               []byte
	KeyType             kms.KeyType
	BlockchainAccountID string

	jsonWebKey *gojose.JSONWebKey
}

// JSONWebKey returns the JWK the method was declared with, if any.
func (vm *VerificationMethod) JSONWebKey() *gojose.JSONWebKey {
	return vm.jsonWebKey
}

// HasKeyMaterial reports whether the method carries usable key material.
func (vm *VerificationMethod) HasKeyMaterial() bool {
	return len(vm.Value) > 0 || vm.BlockchainAccountID != ""
}

// Verification authentication verification method.
type Verification struct {
	VerificationMethod VerificationMethod
	Embedded           bool
}

// Service DID doc service.
type Service struct {
	ID              string
	Type            string
	ServiceEndpoint interface{}
	Properties      map[string]interface{}
}

type rawDoc struct {
	Context            interface{}              `json:"@context,omitempty"`
	ID                 string                   `json:"id,omitempty"`
	VerificationMethod []map[string]interface{} `json:"verificationMethod,omitempty"`
	PublicKey          []map[string]interface{} `json:"publicKey,omitempty"`
	Authentication     []interface{}            `json:"authentication,omitempty"`
	Service            []map[string]interface{} `json:"service,omitempty"`
}

type rawResolution struct {
	Document json.RawMessage `json:"didDocument"`
}

// ParseDocumentResolution parses either a bare DID document or a DID resolution result that wraps it
// under `didDocument`.
func ParseDocumentResolution(data []byte) (*Doc, error) {
	res := &rawResolution{}

	if err := json.Unmarshal(data, res); err == nil && len(res.Document) > 0 && string(res.Document) != "null" {
		return ParseDocument(res.Document)
	}

	return ParseDocument(data)
}

// ParseDocument creates an instance of DIDDocument by reading a JSON document from bytes.
func ParseDocument(data []byte) (*Doc, error) {
	raw := &rawDoc{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of did doc bytes failed: %w", err)
	} else if raw == nil {
		return nil, errors.New("document payload is not provided")
	}

	if raw.ID == "" {
		return nil, errors.New("did document has no id")
	}

	// publicKey is the pre did-core name of verificationMethod.
	rawVMs := append(raw.VerificationMethod, raw.PublicKey...) //nolint:gocritic

	vms, err := populateVerificationMethods(raw.ID, rawVMs)
	if err != nil {
		return nil, fmt.Errorf("populate verification methods failed: %w", err)
	}

	auth, err := populateAuthentications(raw.ID, raw.Authentication, vms)
	if err != nil {
		return nil, fmt.Errorf("populate authentications failed: %w", err)
	}

	return &Doc{
		Context:            parseContext(raw.Context),
		ID:                 raw.ID,
		VerificationMethod: vms,
		Authentication:     auth,
		Service:            populateServices(raw.ID, raw.Service),
	}, nil
}

func parseContext(context interface{}) []string {
	switch ctx := context.(type) {
	case string:
		return []string{ctx}
	case []interface{}:
		var result []string

		for _, v := range ctx {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}

		return result
	}

	return nil
}

func populateVerificationMethods(docID string, rawVMs []map[string]interface{}) ([]VerificationMethod, error) {
	var vms []VerificationMethod

	for _, rawVM := range rawVMs {
		vm, err := decodeVerificationMethod(docID, rawVM)
		if err != nil {
			return nil, err
		}

		vms = append(vms, *vm)
	}

	return vms, nil
}

func populateAuthentications(docID string, rawAuthentications []interface{},
	vms []VerificationMethod) ([]Verification, error) {
	var auth []Verification

	for _, rawAuthentication := range rawAuthentications {
		switch a := rawAuthentication.(type) {
		case string:
			id := absoluteID(docID, a)

			vm, ok := lookupVerificationMethod(vms, id)
			if !ok {
				return nil, fmt.Errorf("authentication key %s not exist in did doc verification method", id)
			}

			auth = append(auth, Verification{VerificationMethod: *vm})
		case map[string]interface{}:
			vm, err := decodeVerificationMethod(docID, a)
			if err != nil {
				return nil, err
			}

			auth = append(auth, Verification{VerificationMethod: *vm, Embedded: true})
		default:
			return nil, fmt.Errorf("authentication entry of type %T is not supported", rawAuthentication)
		}
	}

	return auth, nil
}

func populateServices(docID string, rawServices []map[string]interface{}) []Service {
	services := make([]Service, 0, len(rawServices))

	for _, rawService := range rawServices {
		service := Service{
			ID:              absoluteID(docID, stringEntry(rawService[jsonldID])),
			Type:            stringEntry(rawService[jsonldType]),
			ServiceEndpoint: rawService[jsonldServicePoint],
		}

		delete(rawService, jsonldID)
		delete(rawService, jsonldType)
		delete(rawService, jsonldServicePoint)

		service.Properties = rawService
		services = append(services, service)
	}

	return services
}

// AuthenticationCandidates returns the methods usable to authenticate the subject: those listed under
// authentication first, then all other verification methods, de-duplicated by id in document order.
func (doc *Doc) AuthenticationCandidates() []VerificationMethod {
	seen := map[string]struct{}{}

	var result []VerificationMethod

	add := func(vm VerificationMethod) {
		if _, ok := seen[vm.ID]; ok {
			return
		}

		seen[vm.ID] = struct{}{}

		result = append(result, vm)
	}

	for _, a := range doc.Authentication {
		add(a.VerificationMethod)
	}

	for _, vm := range doc.VerificationMethod {
		add(vm)
	}

	return result
}

// LookupVerificationMethod returns the authentication candidate with the given id. Relative ids
// ("#key-1") are resolved against the document id.
func (doc *Doc) LookupVerificationMethod(id string) (*VerificationMethod, bool) {
	return lookupVerificationMethod(doc.AuthenticationCandidates(), absoluteID(doc.ID, id))
}

func lookupVerificationMethod(vms []VerificationMethod, id string) (*VerificationMethod, bool) {
	for i := range vms {
		if vms[i].ID == id {
			return &vms[i], true
		}
	}

	return nil, false
}

func absoluteID(docID, id string) string {
	if strings.HasPrefix(id, "#") {
		return docID + id
	}

	return id
}

// JSONBytes converts document to json bytes. Keys are rendered as publicKeyHex (or
// blockchainAccountId, or the original publicKeyJwk).
func (doc *Doc) JSONBytes() ([]byte, error) {
	var context interface{} = ContextV1
	if len(doc.Context) > 0 {
		context = doc.Context
	}

	raw := &rawDoc{
		Context: context,
		ID:      doc.ID,
	}

	for i := range doc.VerificationMethod {
		raw.VerificationMethod = append(raw.VerificationMethod, populateRawVerificationMethod(&doc.VerificationMethod[i]))
	}

	for _, a := range doc.Authentication {
		if a.Embedded {
			raw.Authentication = append(raw.Authentication, populateRawVerificationMethod(&a.VerificationMethod))
		} else {
			raw.Authentication = append(raw.Authentication, a.VerificationMethod.ID)
		}
	}

	for _, s := range doc.Service {
		rawService := map[string]interface{}{}

		for k, v := range s.Properties {
			rawService[k] = v
		}

		rawService[jsonldID] = s.ID
		rawService[jsonldType] = s.Type
		rawService[jsonldServicePoint] = s.ServiceEndpoint

		raw.Service = append(raw.Service, rawService)
	}

	byteDoc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of document failed: %w", err)
	}

	return byteDoc, nil
}

func populateRawVerificationMethod(vm *VerificationMethod) map[string]interface{} {
	rawVM := map[string]interface{}{
		jsonldID:         vm.ID,
		jsonldType:       vm.Type,
		jsonldController: vm.Controller,
	}

	switch {
	case vm.jsonWebKey != nil:
		rawVM[jsonldPublicKeyJwk] = vm.jsonWebKey
	case vm.BlockchainAccountID != "":
		rawVM[jsonldBlockchainAccountID] = vm.BlockchainAccountID
	case len(vm.Value) > 0:
		rawVM[jsonldPublicKeyHex] = hex.EncodeToString(vm.Value)
	}

	return rawVM
}

// DocOption provides options to build DID Doc.
type DocOption func(opts *Doc)

// WithVerificationMethod DID doc verification methods.
func WithVerificationMethod(vms ...VerificationMethod) DocOption {
	return func(opts *Doc) {
		opts.VerificationMethod = append(opts.VerificationMethod, vms...)
	}
}

// WithAuthentication DID doc authentication, referencing methods by id.
func WithAuthentication(vms ...VerificationMethod) DocOption {
	return func(opts *Doc) {
		for _, vm := range vms {
			opts.Authentication = append(opts.Authentication, Verification{VerificationMethod: vm})
		}
	}
}

// WithService DID doc services.
func WithService(svc ...Service) DocOption {
	return func(opts *Doc) {
		opts.Service = append(opts.Service, svc...)
	}
}

// BuildDoc creates the DID Doc from options.
func BuildDoc(id string, opts ...DocOption) *Doc {
	doc := &Doc{
		Context: []string{ContextV1},
		ID:      id,
	}

	for _, opt := range opts {
		opt(doc)
	}

	return doc
}

func stringEntry(entry interface{}) string {
	s, _ := entry.(string) //nolint:errcheck

	return s
}
