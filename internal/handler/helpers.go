package handler

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"naxospos/internal/apierror"
	"naxospos/internal/model"
	"naxospos/internal/money"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("tender", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseTender(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("dp2", maxPlaces(money.Cents))
	_ = validate.RegisterValidation("dp3", maxPlaces(money.QuantityPlaces))
}

// maxPlaces checks the decimal places of a decimal.Decimal field. The value
// seen through fl.Field() is already the float64 from the custom type func, so
// the original is read back from the parent struct.
func maxPlaces(places int32) validator.Func {
	return func(fl validator.FieldLevel) bool {
		orig := fl.Parent().FieldByName(fl.StructFieldName())
		if orig.Kind() == reflect.Ptr {
			if orig.IsNil() {
				return true
			}
			orig = orig.Elem()
		}
		d, ok := orig.Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return money.HasMaxPlaces(d, places)
	}
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "JSON invalido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindOptional is bindAndValidate for endpoints whose body may be omitted.
func bindOptional(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return validateStruct(c, req)
	}
	return bindAndValidate(c, req)
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "Parametros invalidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// fieldPath drops the root struct name: "FinalizeSaleRequest.items[0].quantity" → "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// respondError writes the envelope and status for a service error.
func respondError(c *gin.Context, err error) {
	e := apierror.From(err)
	c.JSON(apierror.HTTPStatus(e.Kind), apierror.Envelope(e))
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "ID invalido"))
		return 0, false
	}
	return uint(id), true
}
