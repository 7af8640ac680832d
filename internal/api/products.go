package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

// productForm reads the multipart fields shared by create and update.
func productForm(r *http.Request) (store.UpdateProductRequest, *store.ValidationError) {
	var fields []string
	req := store.UpdateProductRequest{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Unit:        r.FormValue("unit"),
		Description: r.FormValue("description"),
		Pincode:     r.FormValue("pincode"),
		City:        r.FormValue("city"),
		State:       r.FormValue("state"),
	}

	if req.Name == "" {
		fields = append(fields, "name is required")
	}
	if req.Category == "" {
		fields = append(fields, "category is required")
	}
	if req.Unit == "" {
		req.Unit = "kg"
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || price.IsNegative() {
		fields = append(fields, "price must be a non-negative number")
	}
	req.Price = price

	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil || stock < 0 {
		fields = append(fields, "stock must be a non-negative integer")
	}
	req.Stock = stock

	if len(fields) > 0 {
		return req, &store.ValidationError{Fields: fields}
	}
	return req, nil
}

func handleCreateProduct(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(cfg.Uploads.MaxBytes); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		form, verr := productForm(r)
		if verr != nil {
			respondStoreError(w, r, verr)
			return
		}

		image, err := saveUploadedImage(r, "image", cfg)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		farmer := currentUser(r)
		product, err := store.CreateProduct(r.Context(), db, store.CreateProductRequest{
			Name:        form.Name,
			Category:    form.Category,
			Price:       form.Price,
			Unit:        form.Unit,
			Stock:       form.Stock,
			Description: form.Description,
			Image:       image,
			Pincode:     form.Pincode,
			City:        form.City,
			State:       form.State,
			FarmerID:    farmer.ID,
			FarmerPhone: farmer.Phone,
		})
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusCreated, product)
	}
}

func handleListProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := store.ListProducts(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, products)
	}
}

func handleListFarmerProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := store.ListFarmerProducts(r.Context(), db, currentUser(r).ID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, products)
	}
}

func handleUpdateProduct(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid product ID")
			return
		}

		if err := r.ParseMultipartForm(cfg.Uploads.MaxBytes); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		form, verr := productForm(r)
		if verr != nil {
			respondStoreError(w, r, verr)
			return
		}

		farmer := currentUser(r)
		existing, err := store.GetProduct(r.Context(), db, id)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		if existing.FarmerID != farmer.ID {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}

		form.Image = existing.Image
		if image, err := saveUploadedImage(r, "image", cfg); err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		} else if image != "" {
			form.Image = image
		}

		product, err := store.UpdateProduct(r.Context(), db, id, farmer.ID, form)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, product)
	}
}

func handleDeleteProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid product ID")
			return
		}

		if err := store.DeleteProduct(r.Context(), db, id, currentUser(r).ID); err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]string{"message": "Product deleted"})
	}
}
