// Package testuser is the client for the HMRC Create Test User API,
// which provisions throwaway users in the sandbox environment.
package testuser

import (
	"context"

	"github.com/jrsteele09/go-hmrc-client/api"
	"github.com/jrsteele09/go-hmrc-client/session"
)

// Service is an HMRC service a test user can be enrolled for.
type Service string

const (
	ServiceCorporationTax           Service = "corporation-tax"
	ServiceCustomsServices          Service = "customs-services"
	ServiceLisa                     Service = "lisa"
	ServiceMtdIncomeTax             Service = "mtd-income-tax"
	ServiceMtdVat                   Service = "mtd-vat"
	ServiceNationalInsurance        Service = "national-insurance"
	ServicePayeForEmployers         Service = "paye-for-employers"
	ServiceReliefAtSource           Service = "relief-at-source"
	ServiceSecureElectronicTransfer Service = "secure-electronic-transfer"
	ServiceSelfAssessment           Service = "self-assessment"
	ServiceSubmitVatReturns         Service = "submit-vat-returns"
)

// CreateRequest lists the services a new test user is enrolled for.
type CreateRequest struct {
	ServiceNames []Service `json:"serviceNames"`
}

// Address is a test user's postal address.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Postcode string `json:"postcode"`
}

// IndividualDetails describes an individual test user.
type IndividualDetails struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	DateOfBirth api.Date `json:"dateOfBirth"`
	Address     Address  `json:"address"`
}

// OrganisationDetails describes an organisation test user.
type OrganisationDetails struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// User is a created sandbox test user with the identifiers of its
// enrolled services.
type User struct {
	UserID              string               `json:"userId"`
	Password            string               `json:"password"`
	UserFullName        string               `json:"userFullName"`
	EmailAddress        string               `json:"emailAddress"`
	IndividualDetails   *IndividualDetails   `json:"individualDetails,omitempty"`
	OrganisationDetails *OrganisationDetails `json:"organisationDetails,omitempty"`

	SaUtr                                   string    `json:"saUtr,omitempty"`
	Nino                                    string    `json:"nino,omitempty"`
	MtdItID                                 string    `json:"mtdItId,omitempty"`
	EmpRef                                  string    `json:"empRef,omitempty"`
	CtUtr                                   string    `json:"ctUtr,omitempty"`
	Vrn                                     string    `json:"vrn,omitempty"`
	VatRegistrationDate                     *api.Date `json:"vatRegistrationDate,omitempty"`
	LisaManagerReferenceNumber              string    `json:"lisaManagerReferenceNumber,omitempty"`
	SecureElectronicTransferReferenceNumber string    `json:"secureElectronicTransferReferenceNumber,omitempty"`
	PensionSchemeAdministratorIdentifier    string    `json:"pensionSchemeAdministratorIdentifier,omitempty"`
	EoriNumber                              string    `json:"eoriNumber,omitempty"`
	GroupIdentifier                         string    `json:"groupIdentifier,omitempty"`
}

// Client calls the Create Test User endpoints. The API exists only in
// the sandbox and requires an application-restricted token.
type Client struct {
	api *api.Client
}

// NewClient binds a test user client to a (sandbox) session.
func NewClient(sess api.Session, opts ...api.ClientOption) *Client {
	return &Client{api: api.New(sess, opts...)}
}

// CreateIndividual provisions an individual test user enrolled for the
// given services.
func (c *Client) CreateIndividual(ctx context.Context, services []Service, opts ...session.RequestOption) (*User, error) {
	return c.create(ctx, "/create-test-user/individuals", services, opts...)
}

// CreateOrganisation provisions an organisation test user enrolled for
// the given services.
func (c *Client) CreateOrganisation(ctx context.Context, services []Service, opts ...session.RequestOption) (*User, error) {
	return c.create(ctx, "/create-test-user/organisations", services, opts...)
}

func (c *Client) create(ctx context.Context, path string, services []Service, opts ...session.RequestOption) (*User, error) {
	var out User
	if err := c.api.Post(ctx, path, CreateRequest{ServiceNames: services}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
